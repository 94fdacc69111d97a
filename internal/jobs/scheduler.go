// Package jobs runs the periodic maintenance of the portal database.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/service"

	"github.com/robfig/cron/v3"
)

// purgeBatch caps how many listings of one kind a single run deletes.
const purgeBatch = 200

// ClickExpirer removes inquiries that never got past the click phase.
type ClickExpirer interface {
	ExpireClicks(ctx context.Context, cutoff time.Time) (int64, error)
}

type Config struct {
	// Schedule is a standard cron expression or descriptor such as "@daily".
	Schedule          string
	RejectedRetention time.Duration
	ClickRetention    time.Duration
}

// Scheduler purges rejected listings and expires stale inquiry clicks.
type Scheduler struct {
	cfg       Config
	purgers   []service.RejectedPurger
	inquiries ClickExpirer
	cron      *cron.Cron
	now       func() time.Time
}

func NewScheduler(cfg Config, purgers []service.RejectedPurger, inquiries ClickExpirer) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		purgers:   purgers,
		inquiries: inquiries,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start registers the cleanup job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	middleware.Logger.Info("cleanup scheduler started", slog.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop halts the cron loop and waits for a running job until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		middleware.Logger.Warn("cleanup job still running at shutdown")
	}
}

// RunOnce executes every cleanup task immediately.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if s.cfg.RejectedRetention > 0 {
		s.purgeRejected(ctx)
	}
	if s.cfg.ClickRetention > 0 && s.inquiries != nil {
		s.expireClicks(ctx)
	}
}

func (s *Scheduler) purgeRejected(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.RejectedRetention)
	for _, p := range s.purgers {
		n, err := p.PurgeRejected(ctx, cutoff, purgeBatch)
		if err != nil {
			observability.CronRuns.WithLabelValues("purge_rejected", "error").Inc()
			middleware.Logger.ErrorContext(ctx, "failed to purge rejected listings",
				slog.String("kind", string(p.Kind())), slog.Int("removed", n), slog.String("error", err.Error()))
			continue
		}
		observability.CronRuns.WithLabelValues("purge_rejected", "success").Inc()
		if n > 0 {
			middleware.Logger.InfoContext(ctx, "purged rejected listings",
				slog.String("kind", string(p.Kind())), slog.Int("removed", n))
		}
	}
}

func (s *Scheduler) expireClicks(ctx context.Context) {
	n, err := s.inquiries.ExpireClicks(ctx, s.now().Add(-s.cfg.ClickRetention))
	if err != nil {
		observability.CronRuns.WithLabelValues("expire_clicks", "error").Inc()
		middleware.Logger.ErrorContext(ctx, "failed to expire inquiry clicks", slog.String("error", err.Error()))
		return
	}
	observability.CronRuns.WithLabelValues("expire_clicks", "success").Inc()
	if n > 0 {
		middleware.Logger.InfoContext(ctx, "expired inquiry clicks", slog.Int64("removed", n))
	}
}
