// Package app contains the dispatch engine: the drain-and-send
// scheduler, the message dispatcher and the handler lifecycle state
// machine.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mailbuf/mailbuf/internal/domain"
	"github.com/mailbuf/mailbuf/internal/ports"
	"github.com/mailbuf/mailbuf/internal/queue"
)

// drainIdleSleep is how long a drain cycle waits after an empty poll
// before checking the intake queue again.
const drainIdleSleep = 100 * time.Millisecond

// SchedulerConfig contains the timing knobs for the scheduler loop.
type SchedulerConfig struct {
	// PollInterval is the cadence at which the scheduler wakes to check
	// whether a send is due.
	PollInterval time.Duration

	// SendInterval is the minimum spacing between two successful sends.
	SendInterval time.Duration

	// PollDurationMax bounds how long one drain cycle may spend
	// accumulating records.
	PollDurationMax time.Duration
}

// SendEventEmitter is called on send success or failure.
type SendEventEmitter interface {
	OnSendSuccess(recordCount int, duration time.Duration)
	OnSendError(err error, recordCount int)
}

// Scheduler owns the single background worker that drains the intake
// queue into a staging batch and hands full batches to the transport.
//
// mu serializes drain-and-send cycles and guards the staging batch, so
// at most one cycle runs at a time even when the final shutdown flush
// races the background loop. Timing state that the status snapshot
// needs is mirrored in atomics because a drain cycle can hold mu for
// up to PollDurationMax and Status must never block behind it.
type Scheduler struct {
	intake    *queue.Intake
	staging   *domain.Batch
	env       domain.Envelope
	transport ports.Transport
	logger    ports.Logger
	emitter   SendEventEmitter

	mu sync.Mutex

	// Unix nanos of the last successful send; 0 means never.
	lastSend atomic.Int64

	poll        atomic.Int64
	send        atomic.Int64
	drainWindow atomic.Int64

	stagingLen atomic.Int64
}

// NewScheduler creates a scheduler draining the given intake queue.
// The emitter may be nil.
func NewScheduler(cfg SchedulerConfig, intake *queue.Intake, env domain.Envelope,
	transport ports.Transport, logger ports.Logger, emitter SendEventEmitter) *Scheduler {

	s := &Scheduler{
		intake:    intake,
		staging:   domain.NewBatch(),
		env:       env,
		transport: transport,
		logger:    logger,
		emitter:   emitter,
	}
	s.poll.Store(int64(cfg.PollInterval))
	s.send.Store(int64(cfg.SendInterval))
	s.drainWindow.Store(int64(cfg.PollDurationMax))
	return s
}

// Run executes the scheduler loop until ctx is canceled or a dispatch
// fails. A dispatch failure is returned to the caller; the loop does
// not retry and the already-staged records are gone.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var sleep time.Duration
		now := time.Now()
		if next, never := s.nextSendTime(); never || now.After(next) {
			if err := s.Cycle(ctx); err != nil {
				return err
			}
			sleep = time.Duration(s.poll.Load())
		} else {
			// Sleep exactly until the next send is due instead of
			// polling uselessly in between.
			sleep = time.Until(next)
			if sleep < 0 {
				sleep = 0
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// Cycle runs one drain-and-send cycle: move whatever arrives within the
// drain window into the staging batch, then dispatch it if non-empty.
// Safe to call from the shutdown path while the loop is running; the
// internal lock keeps cycles serialized.
func (s *Scheduler) Cycle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drain()
	if s.staging.Empty() {
		return nil
	}

	count := s.staging.Size()
	start := time.Now()
	err := s.dispatch(ctx)

	// The staging buffer is discarded either way: records are never
	// returned to the intake queue after a failed send.
	s.staging.Reset()
	s.stagingLen.Store(0)

	if err != nil {
		s.logger.Error("dispatch failed, records lost",
			ports.Int("records", count),
			ports.Err(err),
		)
		if s.emitter != nil {
			s.emitter.OnSendError(err, count)
		}
		return err
	}

	s.lastSend.Store(time.Now().UnixNano())
	s.logger.Info("dispatched batch",
		ports.Int("records", count),
		ports.Duration("duration", time.Since(start)),
	)
	if s.emitter != nil {
		s.emitter.OnSendSuccess(count, time.Since(start))
	}
	return nil
}

// drain moves available records from the intake queue into the staging
// batch. It returns as soon as an empty poll finds a non-empty batch,
// and otherwise keeps polling until the drain window closes so bursts
// are swept up without ever stalling the scheduler indefinitely.
// The window is re-read every iteration so ShrinkDrainWindow cuts an
// already-running drain short instead of only the next one.
// Called with mu held.
func (s *Scheduler) drain() {
	start := time.Now()
	for time.Since(start) < time.Duration(s.drainWindow.Load()) {
		rec, ok := s.intake.TryGet()
		if ok {
			s.staging.Add(rec)
			s.stagingLen.Store(int64(s.staging.Size()))
			continue
		}
		if !s.staging.Empty() {
			return
		}
		time.Sleep(drainIdleSleep)
	}
}

// ShrinkDrainWindow lowers the drain window if the given bound is
// smaller than the configured one. Used at shutdown so an in-flight or
// final drain returns quickly instead of waiting the full window.
func (s *Scheduler) ShrinkDrainWindow(bound time.Duration) {
	for {
		cur := s.drainWindow.Load()
		if int64(bound) >= cur {
			return
		}
		if s.drainWindow.CompareAndSwap(cur, int64(bound)) {
			return
		}
	}
}

// SetIntervals replaces the poll and send intervals. Non-positive
// values leave the corresponding interval unchanged. The running loop
// picks the new values up on its next wake.
func (s *Scheduler) SetIntervals(poll, send time.Duration) {
	if poll > 0 {
		s.poll.Store(int64(poll))
	}
	if send > 0 {
		s.send.Store(int64(send))
	}
}

// nextSendTime returns the earliest instant the next send may happen.
// never is true when nothing has been sent yet, which makes the first
// check always due.
func (s *Scheduler) nextSendTime() (next time.Time, never bool) {
	last := s.lastSend.Load()
	if last == 0 {
		return time.Time{}, true
	}
	return time.Unix(0, last).Add(time.Duration(s.send.Load())), false
}
