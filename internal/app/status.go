package app

import (
	"fmt"
	"time"
)

// Snapshot is a point-in-time view of the scheduler for diagnostics.
// Pending is best effort: it is read without synchronizing against
// concurrent producers, so it can lag but never undercounts records
// that were already visible when the snapshot was taken.
type Snapshot struct {
	Pending         int
	PollInterval    time.Duration
	SendInterval    time.Duration
	PollDurationMax time.Duration

	// Sent is false until the first successful dispatch; SinceLastSend
	// is meaningless while it is false.
	Sent          bool
	SinceLastSend time.Duration

	// UntilNextSend is how long until the next send is possible at the
	// earliest, clamped to zero.
	UntilNextSend time.Duration

	Recipients string
}

// Snapshot returns the current diagnostic view. It never blocks on the
// cycle lock and mutates nothing.
func (s *Scheduler) Snapshot() Snapshot {
	now := time.Now()
	snap := Snapshot{
		Pending:         s.intake.Len() + int(s.stagingLen.Load()),
		PollInterval:    time.Duration(s.poll.Load()),
		SendInterval:    time.Duration(s.send.Load()),
		PollDurationMax: time.Duration(s.drainWindow.Load()),
		Recipients:      s.env.Recipients(),
	}

	if last := s.lastSend.Load(); last != 0 {
		lastAt := time.Unix(0, last)
		snap.Sent = true
		snap.SinceLastSend = now.Sub(lastAt)
		if until := lastAt.Add(snap.SendInterval).Sub(now); until > 0 {
			snap.UntilNextSend = until
		}
	}
	return snap
}

// Map renders the snapshot as named human-readable values for
// operators polling the diagnostic surface.
func (sn Snapshot) Map() map[string]string {
	sinceLast := "(none sent yet)"
	if sn.Sent {
		sinceLast = sn.SinceLastSend.String()
	}
	return map[string]string{
		"Total number of unprocessed records":  fmt.Sprintf("%d", sn.Pending),
		"Intervals":                            fmt.Sprintf("Poll: %s, Send: %s", sn.PollInterval, sn.SendInterval),
		"Poll duration max":                    sn.PollDurationMax.String(),
		"Time since last email":                sinceLast,
		"Time to next earliest possible email": "at least " + sn.UntilNextSend.String(),
		"Recipients":                           sn.Recipients,
	}
}
