// Package ports defines the interfaces that connect the dispatch
// engine to infrastructure adapters.
//
// The application layer (internal/app) depends only on these
// interfaces. Adapters (internal/adapters) implement them with
// concrete infrastructure (net/smtp, zerolog).
//
//   - [Transport]: delivers one rendered message per batch
//   - [Logger]: structured logging abstraction
package ports
