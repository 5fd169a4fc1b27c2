package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/apperr"
	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/pkg/retry"
)

// Dispatcher delivers events to a Sink either inline or from a single
// background worker. Delivery failures are retried, then logged and dropped.
type Dispatcher struct {
	sink     Sink
	logger   *zap.SugaredLogger
	async    bool
	retryCfg retry.Config

	mu      sync.RWMutex
	queue   chan Event
	started bool
	stopped bool
	done    chan struct{}

	// baseCtx outlives requests so queued events survive request cancellation.
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewDispatcher creates a dispatcher. Call Start before publishing in async mode.
func NewDispatcher(sink Sink, cfg config.EventsConfig, logger *zap.SugaredLogger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sink:     sink,
		logger:   logger,
		async:    cfg.Async,
		retryCfg: retry.DeliveryConfig(cfg.DeliveryAttempts),
		done:     make(chan struct{}),
		baseCtx:  ctx,
		cancel:   cancel,
	}
	if cfg.Async {
		d.queue = make(chan Event, cfg.Buffer)
	}
	return d
}

// Start launches the background worker. It is a no-op in synchronous mode
// and on repeated calls.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.async || d.started || d.stopped {
		return
	}
	d.started = true
	go d.run()
	d.logger.Infow("event dispatcher started", "buffer", cap(d.queue))
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		d.deliver(d.baseCtx, ev)
	}
}

// Publish implements Publisher.
func (d *Dispatcher) Publish(ctx context.Context, events ...Event) {
	for _, ev := range events {
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = time.Now().UTC()
		}
		if !d.enqueue(ev) {
			d.deliver(context.WithoutCancel(ctx), ev)
		}
	}
}

// enqueue hands ev to the worker. It returns false when the caller must
// deliver inline: synchronous mode, worker not running, or a full queue.
func (d *Dispatcher) enqueue(ev Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.async || !d.started || d.stopped {
		return false
	}
	select {
	case d.queue <- ev:
		return true
	default:
		d.logger.Warnw("event queue full, delivering inline", "type", ev.Type, "project_id", ev.ProjectID)
		return false
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	err := retry.Do(ctx, d.retryCfg, func() error {
		return d.sink.Deliver(ctx, ev)
	})
	if err != nil {
		depErr := apperr.Dependency("event delivery failed", err)
		d.logger.Errorw("event dropped",
			"type", ev.Type,
			"project_id", ev.ProjectID,
			"session_id", ev.SessionID,
			"recipients", len(ev.Recipients),
			"error", depErr,
		)
		return
	}
	d.logger.Debugw("event delivered", "type", ev.Type, "project_id", ev.ProjectID, "recipients", len(ev.Recipients))
}

// Stop refuses new work and waits for queued events to drain or ctx to end.
// Events still queued when ctx ends are abandoned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	started := d.started
	if d.queue != nil {
		close(d.queue)
	}
	d.mu.Unlock()

	if !started {
		d.cancel()
		return nil
	}

	select {
	case <-d.done:
		d.cancel()
		d.logger.Infow("event dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.cancel()
		d.logger.Warnw("event dispatcher stop timed out", "pending", len(d.queue))
		return ctx.Err()
	}
}
