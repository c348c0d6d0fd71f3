package domain

import "errors"

// Domain errors returned by the public API; check with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running handler.
	ErrAlreadyRunning = errors.New("mailbuf: already running")

	// ErrNotRunning is returned when Close() is called on a handler that is
	// stopped or whose worker has crashed.
	ErrNotRunning = errors.New("mailbuf: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("mailbuf: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("mailbuf: invalid configuration")
)
