package mailbuf

import (
	"time"

	"github.com/mailbuf/mailbuf/internal/app"
)

// EventHandler receives handler events. All methods are called
// synchronously from the worker goroutine (or, for the final flush,
// from the goroutine calling Close); implementations should return
// quickly.
type EventHandler interface {
	// OnStateChange is called when the lifecycle state changes.
	OnStateChange(e StateChangeEvent)

	// OnSendSuccess is called after a batch was handed to the transport.
	OnSendSuccess(e SendSuccessEvent)

	// OnSendError is called when a dispatch failed. The batch is lost.
	OnSendError(e SendErrorEvent)
}

// BaseEventHandler provides no-op implementations of every EventHandler
// method. Embed it to override only the events you care about.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnSendSuccess(SendSuccessEvent) {}
func (BaseEventHandler) OnSendError(SendErrorEvent)     {}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendSuccessEvent describes a successful dispatch.
type SendSuccessEvent struct {
	RecordCount int
	Duration    time.Duration
}

// SendErrorEvent describes a failed dispatch.
type SendErrorEvent struct {
	Err         error
	RecordCount int
}

// eventEmitterWrapper adapts EventHandler to the internal emitter
// interfaces. A nil handler makes every emit a no-op.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSendSuccess(recordCount int, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendSuccess(SendSuccessEvent{
		RecordCount: recordCount,
		Duration:    duration,
	})
}

func (e *eventEmitterWrapper) OnSendError(err error, recordCount int) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{
		Err:         err,
		RecordCount: recordCount,
	})
}
