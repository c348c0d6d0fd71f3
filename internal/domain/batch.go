package domain

import "strings"

// Batch is the staging buffer for one drain-and-send cycle. Records are
// appended in the order they were dequeued from the intake queue and
// the rendered message lists them in that order.
type Batch struct {
	records []Record
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{records: make([]Record, 0)}
}

// Add appends a record to the batch.
func (b *Batch) Add(rec Record) {
	b.records = append(b.records, rec)
}

// Size returns the number of records in the batch.
func (b *Batch) Size() int {
	return len(b.records)
}

// Empty returns true if the batch has no records.
func (b *Batch) Empty() bool {
	return len(b.records) == 0
}

// Reset clears the batch for reuse.
func (b *Batch) Reset() {
	b.records = b.records[:0]
}

// Join returns the record texts joined by the given separator.
func (b *Batch) Join(sep string) string {
	parts := make([]string, len(b.records))
	for i, r := range b.records {
		parts[i] = string(r)
	}
	return strings.Join(parts, sep)
}

// Records returns the records in batch order. The returned slice is the
// batch's backing storage and must not be retained across a Reset.
func (b *Batch) Records() []Record {
	return b.records
}
