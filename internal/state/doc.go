// Package state provides thread-safe state management for open log files.
//
// # Overview
//
// The Store is the coordination point between the follower goroutine, which
// reads files and writes their decoded content, and the UI, which opens and
// closes files and renders snapshots.
//
//	Producer (follower):            Consumer (UI):
//	┌──────────────────┐           ┌──────────────────┐
//	│ store.Targets()  │           │ store.Open()     │
//	│ logtail.Follow() │           │ store.Snapshot() │
//	│ store.Append()   │──────────→│ document edits   │
//	└──────────────────┘  (mutex)  └──────────────────┘
//
// # Content Windows
//
// A File's Content grows by Append and is replaced by Reset. Replacements
// bump Generation. When content exceeds the buffer limit, whole lines are
// dropped from the front and counted in Trimmed. A consumer that remembers
// the Generation and Trimmed it last saw can therefore turn any snapshot into
// at most two edits: a removal at the front and an append at the end.
//
// # Stale Reads
//
// The follower reads files without holding the lock. Append and Reset take
// the Target the read started from and are ignored when the file was closed,
// reset or re-encoded in the meantime.
//
// # Error Propagation
//
// Fail records a read error and keeps the previous content, so the UI keeps
// showing the last good data alongside the error.
package state
