// Package domain contains the core entities for mailbuf.
//
// This is the innermost layer: it has no dependencies on transport,
// logging or configuration concerns and holds only the types the
// dispatch engine reasons about.
//
// # Entities
//
//   - [Record]: one pre-formatted log entry awaiting dispatch
//   - [Batch]: the set of records going out in one message
//   - [Envelope]: immutable sender/recipients/subject with the
//     rendered message header
package domain
