package ports

import "context"

// Transport delivers one complete outbound message per batch.
// Implementations open the session, negotiate encryption and
// authenticate as configured, send, and close — all within the single
// Send call. The session is never held across dispatch cycles.
//
// Errors are returned to the caller unwrapped by any retry policy:
// the engine deliberately has none.
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// Credentials carries optional SMTP authentication material.
type Credentials struct {
	Username string
	Password string
}
