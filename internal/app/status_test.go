package app

import (
	"context"
	"testing"
	"time"

	"github.com/mailbuf/mailbuf/internal/domain"
)

func TestSnapshot_NeverSent(t *testing.T) {
	s, q := newTestScheduler(testConfig(), &mockTransport{})

	q.Put("a")
	q.Put("b")

	snap := s.Snapshot()
	if snap.Pending != 2 {
		t.Errorf("Pending = %d, want 2", snap.Pending)
	}
	if snap.Sent {
		t.Error("Sent = true before any dispatch")
	}
	if snap.UntilNextSend != 0 {
		t.Errorf("UntilNextSend = %v before any dispatch, want 0", snap.UntilNextSend)
	}
	if snap.Recipients != "dst@example.com" {
		t.Errorf("Recipients = %q", snap.Recipients)
	}
}

func TestSnapshot_AfterSend(t *testing.T) {
	cfg := testConfig()
	cfg.SendInterval = time.Hour
	s, q := newTestScheduler(cfg, &mockTransport{})

	q.Put("a")
	if err := s.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() error = %v", err)
	}

	snap := s.Snapshot()
	if !snap.Sent {
		t.Fatal("Sent = false after dispatch")
	}
	if snap.SinceLastSend < 0 {
		t.Errorf("SinceLastSend = %v", snap.SinceLastSend)
	}
	if snap.UntilNextSend <= 0 || snap.UntilNextSend > time.Hour {
		t.Errorf("UntilNextSend = %v, want within (0, 1h]", snap.UntilNextSend)
	}
	if snap.Pending != 0 {
		t.Errorf("Pending = %d after full drain", snap.Pending)
	}
}

func TestSnapshot_CountsEnqueuedNotDispatched(t *testing.T) {
	s, q := newTestScheduler(testConfig(), &mockTransport{})

	const n = 7
	for i := 0; i < n; i++ {
		q.Put(domain.Record("r"))
	}
	if snap := s.Snapshot(); snap.Pending < n {
		t.Errorf("Pending = %d, want >= %d", snap.Pending, n)
	}
}

func TestSnapshot_NonBlockingDuringDrain(t *testing.T) {
	cfg := testConfig()
	cfg.PollDurationMax = time.Second
	s, _ := newTestScheduler(cfg, &mockTransport{})

	// An empty cycle idles inside the drain window with the cycle lock
	// held; the snapshot must still return promptly.
	cycleDone := make(chan struct{})
	go func() {
		_ = s.Cycle(context.Background())
		close(cycleDone)
	}()
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	_ = s.Snapshot()
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("Snapshot blocked for %v during drain", elapsed)
	}
	<-cycleDone
}

func TestSnapshot_Map(t *testing.T) {
	s, _ := newTestScheduler(SchedulerConfig{
		PollInterval:    5 * time.Second,
		SendInterval:    2 * time.Minute,
		PollDurationMax: 10 * time.Second,
	}, &mockTransport{})

	m := s.Snapshot().Map()
	if m["Total number of unprocessed records"] != "0" {
		t.Errorf("unprocessed = %q", m["Total number of unprocessed records"])
	}
	if m["Intervals"] != "Poll: 5s, Send: 2m0s" {
		t.Errorf("Intervals = %q", m["Intervals"])
	}
	if m["Poll duration max"] != "10s" {
		t.Errorf("Poll duration max = %q", m["Poll duration max"])
	}
	if m["Time since last email"] != "(none sent yet)" {
		t.Errorf("Time since last email = %q", m["Time since last email"])
	}
	if m["Time to next earliest possible email"] != "at least 0s" {
		t.Errorf("next send = %q", m["Time to next earliest possible email"])
	}
	if m["Recipients"] != "dst@example.com" {
		t.Errorf("Recipients = %q", m["Recipients"])
	}
}
