package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
)

// Sink delivers one notification to a destination.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg models.NotificationMessage) error
}

// OverflowPolicy decides what happens when the queue is full.
type OverflowPolicy string

const (
	// DropOldest evicts the oldest queued notification to make room.
	DropOldest OverflowPolicy = "drop_oldest"
	// Block waits up to EnqueueTimeout for room, then drops the new notification.
	Block OverflowPolicy = "block"
)

// Drop reasons reported in metrics.
const (
	dropEvicted = "evicted"
	dropTimeout = "timeout"
	dropClosed  = "closed"
	dropFull    = "full"
)

// ErrClosed is returned by Shutdown when called twice.
var ErrClosed = errors.New("notifications: dispatcher closed")

// Config sizes the dispatcher.
type Config struct {
	QueueSize       int
	Workers         int
	Policy          OverflowPolicy
	EnqueueTimeout  time.Duration
	DeliveryTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Policy != Block {
		c.Policy = DropOldest
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 250 * time.Millisecond
	}
	if c.DeliveryTimeout <= 0 {
		c.DeliveryTimeout = 10 * time.Second
	}
	return c
}

type envelope struct {
	msg           models.NotificationMessage
	correlationID string
}

// Dispatcher queues notifications and fans them out to its sinks from a
// fixed pool of workers. Enqueueing never fails the caller.
type Dispatcher struct {
	cfg   Config
	sinks []Sink
	queue chan envelope

	mu     sync.RWMutex
	closed bool
	start  sync.Once
	wg     sync.WaitGroup
}

// NewDispatcher returns a dispatcher delivering to sinks. Call Start to
// launch the workers.
func NewDispatcher(cfg Config, sinks ...Sink) *Dispatcher {
	cfg = cfg.withDefaults()
	return &Dispatcher{
		cfg:   cfg,
		sinks: sinks,
		queue: make(chan envelope, cfg.QueueSize),
	}
}

// Start launches the worker pool once.
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			d.wg.Add(1)
			go d.worker(i)
		}
		middleware.Logger.Info("notification dispatcher started",
			slog.Int("workers", d.cfg.Workers),
			slog.Int("queue_size", d.cfg.QueueSize),
			slog.String("policy", string(d.cfg.Policy)))
	})
}

// Notify enqueues msg for asynchronous delivery. It returns once the message
// is queued or dropped; drops are logged and counted.
func (d *Dispatcher) Notify(ctx context.Context, msg models.NotificationMessage) {
	env := envelope{msg: msg, correlationID: observability.ExtractCorrelationID(ctx)}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped(ctx, msg, dropClosed)
		return
	}

	select {
	case d.queue <- env:
		d.observeDepth()
		return
	default:
	}

	switch d.cfg.Policy {
	case Block:
		timer := time.NewTimer(d.cfg.EnqueueTimeout)
		defer timer.Stop()
		select {
		case d.queue <- env:
			d.observeDepth()
		case <-timer.C:
			d.dropped(ctx, msg, dropTimeout)
		case <-ctx.Done():
			d.dropped(ctx, msg, dropTimeout)
		}
	default:
		select {
		case old := <-d.queue:
			d.dropped(ctx, old.msg, dropEvicted)
		default:
		}
		select {
		case d.queue <- env:
			d.observeDepth()
		default:
			d.dropped(ctx, msg, dropFull)
		}
	}
}

// Len returns the number of queued notifications.
func (d *Dispatcher) Len() int {
	return len(d.queue)
}

// Shutdown stops accepting notifications and waits for the workers to
// drain the queue or for ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	// Workers that never started cannot drain the queue.
	d.Start()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification drain interrupted with %d queued: %w", len(d.queue), ctx.Err())
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for env := range d.queue {
		d.observeDepth()
		d.deliver(id, env)
	}
}

func (d *Dispatcher) deliver(workerID int, env envelope) {
	ctx := context.Background()
	if env.correlationID != "" {
		ctx = observability.WithCorrelationID(ctx, env.correlationID)
	}
	for _, sink := range d.sinks {
		d.deliverOne(ctx, workerID, sink, env.msg)
	}
}

func (d *Dispatcher) deliverOne(parent context.Context, workerID int, sink Sink, msg models.NotificationMessage) {
	ctx, cancel := context.WithTimeout(parent, d.cfg.DeliveryTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			observability.NotificationDeliveries.WithLabelValues(sink.Name(), "panic").Inc()
			middleware.Logger.Error("PANIC in notification sink",
				slog.String("sink", sink.Name()),
				slog.Int("worker", workerID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	fields := map[string]interface{}{"sink": sink.Name(), "user_id": msg.UserID, "worker": workerID}
	if err := sink.Deliver(ctx, msg); err != nil {
		observability.NotificationDeliveries.WithLabelValues(sink.Name(), "error").Inc()
		observability.LogAsyncOperationError(ctx, "notification_delivery", err, fields)
		return
	}
	observability.NotificationDeliveries.WithLabelValues(sink.Name(), "ok").Inc()
	observability.LogAsyncOperationEnd(ctx, "notification_delivery", fields)
}

func (d *Dispatcher) dropped(ctx context.Context, msg models.NotificationMessage, reason string) {
	observability.NotificationDrops.WithLabelValues(reason).Inc()
	middleware.Logger.WarnContext(ctx, "notification dropped",
		slog.String("reason", reason),
		slog.Uint64("user_id", uint64(msg.UserID)),
		slog.String("reference_type", msg.ReferenceType))
}

func (d *Dispatcher) observeDepth() {
	observability.NotificationQueueDepth.Set(float64(len(d.queue)))
}
