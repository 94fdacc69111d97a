// Command server is the entry point for the Jharkhand portal API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/bootstrap"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/featureflags"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/jobs"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/media"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/notifications"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := middleware.Configure(cfg.Env, cfg.LogLevel)
	observability.SetLogger(logger)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "jharkhand-portal-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	ctx := context.Background()
	mediaManager, err := media.NewManagerFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	flags := featureflags.NewManager(cfg.FeatureFlags)
	sinks := []notifications.Sink{notifications.NewStoreSink(repository.NewNotificationRepository(db))}
	if rdb != nil {
		sinks = append(sinks, notifications.NewRedisSink(notifications.NewNotifier(rdb)))
	}
	if cfg.FCMCredentialsFile != "" {
		fcm, err := notifications.NewFCMClient(ctx, cfg.FCMCredentialsFile)
		if err != nil {
			middleware.Logger.Warn("push notifications disabled", slog.String("error", err.Error()))
		} else {
			sinks = append(sinks, notifications.NewPushSink(fcm, repository.NewUserRepository(db), flags))
		}
	}
	dispatcher := notifications.NewDispatcher(notifications.Config{
		QueueSize:      cfg.NotifyQueueSize,
		Workers:        cfg.NotifyWorkers,
		Policy:         notifications.OverflowPolicy(cfg.NotifyOverflowPolicy),
		EnqueueTimeout: cfg.NotifyEnqueueTimeout(),
	}, sinks...)
	dispatcher.Start()

	srv := server.NewServerWithDeps(cfg, db, rdb, server.Deps{
		Media:      mediaManager,
		Notifier:   dispatcher,
		Flags:      flags,
		Prometheus: middleware.InitMetrics("jharkhand-portal-api"),
		Drain:      dispatcher.Shutdown,
	})

	scheduler := jobs.NewScheduler(jobs.Config{
		Schedule:          cfg.CleanupSchedule,
		RejectedRetention: time.Duration(cfg.RejectedRetentionDays) * 24 * time.Hour,
		ClickRetention:    time.Duration(cfg.InquiryClickTTLDays) * 24 * time.Hour,
	}, srv.Catalog().Purgers(), srv.Inquiries())
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start cleanup scheduler: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		scheduler.Stop(ctx)
		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
