package mailbuf_test

import (
	"context"
	"fmt"

	"github.com/mailbuf/mailbuf"
)

// ExampleNew demonstrates how to embed mailbuf in your application.
func ExampleNew() {
	cfg := mailbuf.Config{
		FromAddr: "app@example.com",
		ToAddrs:  []string{"ops@example.com"},
		Subject:  "error digest",
		Host:     "smtp.example.com:587",
	}

	h, err := mailbuf.New(cfg)
	if err != nil {
		fmt.Printf("failed to create handler: %v\n", err)
		return
	}

	// Start the background worker (non-blocking).
	ctx := context.Background()
	if err := h.Start(ctx); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		return
	}

	// Enqueue never blocks; records accumulate until the next send.
	h.Enqueue("2026-08-30 12:00:01 [ERROR] something broke")
	h.Enqueue("2026-08-30 12:00:02 [ERROR] something else broke")

	// State may be Starting or Running depending on timing.
	state := h.State()
	fmt.Printf("State is valid: %v\n", state == mailbuf.StateStarting || state == mailbuf.StateRunning)

	// Close flushes everything still buffered as one final message.
	_ = h.Close()

	// Output: State is valid: true
}

// Example_withEventHandler demonstrates how to receive handler events.
func Example_withEventHandler() {
	handler := &myEventHandler{}

	cfg := mailbuf.Config{
		FromAddr: "app@example.com",
		ToAddrs:  []string{"ops@example.com"},
		Subject:  "error digest",
	}

	h, err := mailbuf.New(cfg, mailbuf.WithEventHandler(handler))
	if err != nil {
		fmt.Printf("failed to create handler: %v\n", err)
		return
	}

	_ = h // Use handler instance...
}

// myEventHandler implements mailbuf.EventHandler for event notifications.
type myEventHandler struct {
	mailbuf.BaseEventHandler // Embed for no-op defaults
}

func (h *myEventHandler) OnSendSuccess(event mailbuf.SendSuccessEvent) {
	fmt.Printf("Sent %d records in %v\n", event.RecordCount, event.Duration)
}

func (h *myEventHandler) OnSendError(event mailbuf.SendErrorEvent) {
	fmt.Printf("Send error: %v (records lost: %d)\n", event.Err, event.RecordCount)
}

// Example_sharedQueue demonstrates several handlers draining one queue.
func Example_sharedQueue() {
	q := mailbuf.NewQueue()

	cfg := mailbuf.Config{
		FromAddr: "app@example.com",
		ToAddrs:  []string{"ops@example.com"},
		Subject:  "error digest",
	}

	// Both handlers compete for records from the same intake queue;
	// each record is dispatched by exactly one of them.
	h1, err := mailbuf.New(cfg, mailbuf.WithSharedQueue(q))
	if err != nil {
		fmt.Printf("failed to create handler: %v\n", err)
		return
	}
	h2, err := mailbuf.New(cfg, mailbuf.WithSharedQueue(q))
	if err != nil {
		fmt.Printf("failed to create handler: %v\n", err)
		return
	}

	_, _ = h1, h2 // Start both and enqueue into either...
}
