package app

import (
	"context"
	"fmt"
)

// dispatch renders the staging batch into one message and hands it to
// the transport. Called with mu held and a non-empty staging batch.
//
// The body leads with the included count and, when more records are
// already waiting behind this batch, the pending count, so a recipient
// can tell at a glance whether the message is a complete picture.
func (s *Scheduler) dispatch(ctx context.Context) error {
	body := fmt.Sprintf("Included messages: %d\r\n", s.staging.Size())

	if pending := s.intake.Len(); pending > 0 {
		body += fmt.Sprintf("Pending messages:  %d\r\n", pending)
	}

	body += "\r\n"
	body += s.staging.Join("\r\n")

	msg := s.env.Header() + body
	return s.transport.Send(ctx, s.env.From, s.env.To, []byte(msg))
}
