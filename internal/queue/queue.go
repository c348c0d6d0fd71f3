// Package queue provides the unbounded thread-safe FIFO that producers
// enqueue into. It is the sole entry point for records; the scheduler
// is its only consumer.
package queue

import (
	"sync"

	"github.com/mailbuf/mailbuf/internal/domain"
)

// Intake is an unbounded FIFO safe for concurrent Put and TryGet from
// any number of goroutines; a record goes to whichever consumer
// dequeues it first. It uses its own lock, independent of the
// scheduler's, so producers are never blocked by an in-progress send.
type Intake struct {
	mu   sync.Mutex
	recs []domain.Record
	head int
}

// NewIntake creates an empty intake queue.
func NewIntake() *Intake {
	return &Intake{}
}

// Put appends a record. It never blocks beyond the internal lock and
// never fails.
func (q *Intake) Put(rec domain.Record) {
	q.mu.Lock()
	q.recs = append(q.recs, rec)
	q.mu.Unlock()
}

// TryGet removes and returns the oldest record. The second return is
// false when the queue is empty.
func (q *Intake) TryGet() (domain.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.recs) {
		return "", false
	}
	rec := q.recs[q.head]
	q.recs[q.head] = ""
	q.head++

	// Reclaim the consumed prefix once it dominates the slice.
	if q.head > 64 && q.head*2 >= len(q.recs) {
		q.recs = append(q.recs[:0], q.recs[q.head:]...)
		q.head = 0
	}
	return rec, true
}

// Len returns the approximate number of queued records. It is intended
// for reporting only; the value can be stale by the time it is read.
func (q *Intake) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.recs) - q.head
}
