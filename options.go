package mailbuf

import (
	"github.com/mailbuf/mailbuf/internal/ports"
	"github.com/mailbuf/mailbuf/internal/queue"
)

// Logger is the interface for structured logging.
type Logger = ports.Logger

// Field represents a structured log field.
type Field = ports.Field

// Transport delivers one rendered message per batch. The default is
// the built-in SMTP transport; supply your own to send batches
// elsewhere or to capture them in tests.
type Transport = ports.Transport

// Option configures optional behavior of a Handler.
type Option func(*options)

// options holds the optional configuration for a Handler.
type options struct {
	logger       ports.Logger
	transport    ports.Transport
	eventHandler EventHandler
	queue        *queue.Intake
}

// defaultOptions returns options with all extension points unset.
func defaultOptions() options {
	return options{}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTransport replaces the built-in SMTP transport.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithEventHandler sets a handler for lifecycle and send events.
// Events are called synchronously from the worker goroutine.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithSharedQueue makes the handler drain the given queue instead of a
// private one. Several handlers may share one queue; each record is
// dispatched by whichever handler drains it first. The sharing scope
// is this explicit option, never implied.
func WithSharedQueue(q *Queue) Option {
	return func(o *options) {
		o.queue = q
	}
}
