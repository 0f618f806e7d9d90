// Package engine runs a ClientData on a single-writer event loop.
//
// The transport, the CLI and any display layer run on their own goroutines,
// while a ClientData must only be touched from one. The engine owns the
// ClientData and serializes every access through one FIFO queue:
//
//   - Submit enqueues a decoded batch for AddData
//   - SetLogOnly enqueues a mode switch
//   - Do enqueues a read or user action and waits for it to finish
//
// Run dequeues events one at a time and processes each to completion before
// the next, so a batch is never observed half-applied.
//
// Every processed batch is stamped with a seq from a monotonic logical Clock
// and reported to the registered observers in that order.
package engine
