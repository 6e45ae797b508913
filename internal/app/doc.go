// Package app provides the orchestration layer for logview.
//
// # Overview
//
// This package wires together configuration, preferences, highlight rules,
// file following and the UI. It is the composition root where all
// dependencies are initialized and connected; the logger built here is
// passed down explicitly.
//
// # Architecture
//
//  1. Load configuration from ~/.config/logview/config.toml
//  2. Open the log file sink (discarded when no path is configured)
//  3. Load preferences, resolve the default encoding and the chroma palette
//  4. Load highlight rules from rules.toml or fall back to the defaults
//  5. Create the shared state.Store, the file watcher and the Follower
//  6. Open the files named on the command line, or those open at last exit
//  7. Start the TUI and block until the user exits or the context cancels
//
// # Components
//
//   - app.go: Run and the wiring above
//   - follower.go: background reader keeping the store in step with the files
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()      Read settings
//	       ├─────> rules.Load()       Ordered highlight rules
//	       ├─────> state.NewStore()   Shared content windows
//	       ├─────> watcher.New()      fsnotify wakeups (optional)
//	       ├─────> Follower.Run()     Background reads
//	       └─────> ui.Run()           Start TUI (blocks)
//
//	Follower loop:
//	┌─────────────────────────────────────────┐
//	│ tick, watcher change or Wake()          │
//	│  ├─> store.Targets()                    │
//	│  ├─> logtail.Tail() / logtail.Follow()  │
//	│  └─> store.Reset() / store.Append()     │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Run fails on an unreadable configuration, an unknown encoding or palette,
// or a broken rules file. Read errors while following are recorded on the
// file, logged, and retried with exponential backoff capped at 30 seconds.
// A missing file is not an error: it reads as empty until it appears.
package app
