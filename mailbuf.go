// Package mailbuf provides a buffering email dispatcher for log
// records. Producers enqueue pre-formatted records from any goroutine;
// a single background worker accumulates them and periodically ships
// the whole set as one message instead of one message per record.
//
// Example usage:
//
//	cfg := mailbuf.Config{
//	    FromAddr: "app@example.com",
//	    ToAddrs:  []string{"ops@example.com"},
//	    Subject:  "error digest",
//	    Host:     "smtp.example.com:587",
//	}
//	h, err := mailbuf.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := h.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	h.Enqueue("2026-08-30 12:00:01 [ERROR] something broke")
//	defer h.Close()
package mailbuf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logAdapter "github.com/mailbuf/mailbuf/internal/adapters/log"
	smtpAdapter "github.com/mailbuf/mailbuf/internal/adapters/smtp"
	"github.com/mailbuf/mailbuf/internal/app"
	"github.com/mailbuf/mailbuf/internal/domain"
	"github.com/mailbuf/mailbuf/internal/ports"
	"github.com/mailbuf/mailbuf/internal/queue"
)

// shutdownDrainWindow bounds the final drain at Close so shutdown does
// not wait out a full PollDurationMax.
const shutdownDrainWindow = 250 * time.Millisecond

// Exported errors; check with errors.Is.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
)

// Credentials carries optional SMTP authentication material.
type Credentials = ports.Credentials

// State reports the handler lifecycle state.
type State = app.State

// Lifecycle states.
const (
	StateStopped  = app.StateStopped
	StateStarting = app.StateStarting
	StateRunning  = app.StateRunning
	StateStopping = app.StateStopping
	StateCrashed  = app.StateCrashed
)

// Status is a point-in-time diagnostic snapshot of a handler.
type Status = app.Snapshot

// Queue is the intake queue records are enqueued into. Handlers create
// a private queue by default; pass one explicitly with WithSharedQueue
// to let several handlers drain the same stream.
type Queue = queue.Intake

// NewQueue creates an empty intake queue for use with WithSharedQueue.
func NewQueue() *Queue {
	return queue.NewIntake()
}

// Config holds the construction-time configuration for a handler.
type Config struct {
	// FromAddr is the sender address. Required.
	FromAddr string

	// ToAddrs is the flat recipient list. Required, at least one.
	ToAddrs []string

	// Subject is the subject line of every dispatched message.
	Subject string

	// Host is the SMTP host, optionally with a port ("host:587").
	// Defaults to "localhost"; without an explicit port, 25 is used.
	Host string

	// UseTLS upgrades the session with STARTTLS before sending.
	UseTLS bool

	// Credentials enables SMTP authentication when non-nil.
	Credentials *Credentials

	// PollInterval is the cadence at which the worker wakes to check
	// whether a send is due. Defaults to 5s.
	PollInterval time.Duration

	// SendInterval is the minimum spacing between two successful
	// sends. Defaults to 2m.
	SendInterval time.Duration

	// PollDurationMax bounds how long one drain cycle may spend
	// accumulating records. Defaults to 10s.
	PollDurationMax time.Duration

	// ShutdownTimeout bounds the worker join during Close.
	// Defaults to 30s.
	ShutdownTimeout time.Duration
}

// SetDefaults fills zero-valued optional fields.
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.PollInterval == 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.SendInterval == 0 {
		c.SendInterval = 2 * time.Minute
	}
	if c.PollDurationMax == 0 {
		c.PollDurationMax = 10 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = app.ShutdownTimeout
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FromAddr == "" {
		return fmt.Errorf("%w: from address is required", ErrInvalidConfig)
	}
	if len(c.ToAddrs) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidConfig)
	}
	if c.PollInterval < 0 || c.SendInterval < 0 || c.PollDurationMax < 0 {
		return fmt.Errorf("%w: intervals must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Handler is a buffering email dispatcher. Use New to create one, then
// Start to launch the background worker. Enqueue is safe from any
// goroutine at any point in the lifecycle; records enqueued before
// Start are dispatched once the worker runs.
type Handler struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	sched     *app.Scheduler
	intake    *queue.Intake
	logger    ports.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a handler in StateStopped; call Start to begin
// dispatching. Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Handler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	lifecycle := app.NewLifecycle(logger, emitter)

	intake := o.queue
	if intake == nil {
		intake = queue.NewIntake()
	}

	transport := o.transport
	if transport == nil {
		transport = smtpAdapter.NewSender(cfg.Host, cfg.UseTLS, cfg.Credentials, logger)
	}

	env := domain.NewEnvelope(cfg.FromAddr, cfg.ToAddrs, cfg.Subject)
	sched := app.NewScheduler(app.SchedulerConfig{
		PollInterval:    cfg.PollInterval,
		SendInterval:    cfg.SendInterval,
		PollDurationMax: cfg.PollDurationMax,
	}, intake, env, transport, logger, emitter)

	return &Handler{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		sched:     sched,
		intake:    intake,
		logger:    logger,
	}, nil
}

// Enqueue queues one formatted record for a later batch. It never
// blocks and is safe from any goroutine.
func (h *Handler) Enqueue(text string) {
	h.intake.Put(domain.Record(text))
}

// Start launches the background worker. Returns immediately; the
// provided context bounds the lifetime of the worker. Returns
// ErrAlreadyRunning if the handler is already active.
//
// Canceling ctx stops the worker and moves the handler to StateStopped
// without the final flush; use Close for a shutdown that drains the
// intake queue first.
func (h *Handler) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := h.lifecycle.TransitionTo(StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.lifecycle.SetCancel(cancel)

	h.lifecycle.AddWorker()
	go func() {
		defer h.lifecycle.WorkerDone()

		if err := h.lifecycle.TransitionTo(StateRunning, "worker started"); err != nil {
			// Close won the race during startup; nothing to run.
			h.logger.Debug("worker exiting before run", ports.Err(err))
			return
		}

		err := h.sched.Run(runCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			// Transport failure: no retry, no requeue. The worker is
			// dead until the handler is restarted.
			h.logger.Error("worker stopped", ports.Err(err))
			_ = h.lifecycle.TransitionTo(StateCrashed, err.Error())
			return
		}

		// Cancellation of the caller's Start context, not a Close: fold
		// the handler into Stopped so it does not report Running with no
		// worker behind it. Records still queued are not flushed on this
		// path; only Close guarantees the final drain.
		if h.lifecycle.State() == StateRunning {
			if err := h.lifecycle.TransitionTo(StateStopping, "run context canceled"); err == nil {
				_ = h.lifecycle.TransitionTo(StateStopped, "run context canceled")
			}
		}
	}()

	return nil
}

// Close gracefully shuts the handler down: the drain window is shrunk
// so any in-flight cycle returns quickly, one final drain-and-send
// cycle runs synchronously on the calling goroutine, and the worker is
// joined with a bounded wait. Records in the intake queue at the time
// of the call are dispatched before Close returns.
//
// Returns ErrNotRunning if the handler is stopped or its worker has
// crashed; a crashed worker's staged records are already lost.
func (h *Handler) Close() error {
	h.mu.Lock()
	if !h.lifecycle.CanStop() {
		h.mu.Unlock()
		return ErrNotRunning
	}
	if err := h.lifecycle.TransitionTo(StateStopping, "Close() called"); err != nil {
		h.mu.Unlock()
		return err
	}
	cancel := h.cancel
	h.mu.Unlock()

	h.sched.ShrinkDrainWindow(shutdownDrainWindow)

	// Final synchronous flush of whatever is buffered, before the run
	// context is canceled: the cycle lock waits out any cycle the
	// worker is mid-way through, so a send already in flight completes
	// on a live context instead of being aborted and discarded.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), h.config.ShutdownTimeout)
	flushErr := h.sched.Cycle(flushCtx)
	flushCancel()

	if cancel != nil {
		cancel()
	}

	waitErr := h.lifecycle.WaitWithTimeout(h.config.ShutdownTimeout)
	if waitErr != nil {
		_ = h.lifecycle.TransitionTo(StateCrashed, "shutdown timeout")
	} else {
		_ = h.lifecycle.TransitionTo(StateStopped, "graceful shutdown")
	}

	if flushErr != nil {
		return flushErr
	}
	return waitErr
}

// State returns the current lifecycle state. Safe from any goroutine.
func (h *Handler) State() State {
	return h.lifecycle.State()
}

// Status returns a diagnostic snapshot. It never blocks behind an
// in-progress drain or send and mutates nothing.
func (h *Handler) Status() Status {
	return h.sched.Snapshot()
}

// StatusMap renders the snapshot plus the lifecycle state as named
// human-readable values for monitoring tooling.
func (h *Handler) StatusMap() map[string]string {
	m := h.Status().Map()
	m["Handler state"] = h.State().String()
	return m
}

// SetIntervals replaces the poll and send intervals on a live handler.
// Non-positive values leave the corresponding interval unchanged.
func (h *Handler) SetIntervals(poll, send time.Duration) {
	h.sched.SetIntervals(poll, send)
}
