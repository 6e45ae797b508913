// Package ui provides the terminal interface of logview, a bubbletea program
// that shows followed log files with rule-based highlighting.
//
// # Package Structure
//
//   - app.go: Model, message handling, and the Run entry point
//   - file_view.go: one open file, its document, reconciler, and viewport
//   - render.go: turns a document line plus its style ranges into ANSI text
//   - header.go: tab bar, command bar, log box, and status bar
//   - search.go: regex search over the lines of a file view
//   - modal.go, rules_view.go, help.go: overlays
//   - theme.go, style_helpers.go, keys.go, layout.go: chrome
//
// # Data Flow
//
// The UI never reads files. A follower goroutine fills a state.Store; on
// every tick the Model takes a snapshot and hands each state.File to its
// fileView. The view turns the difference to what it last saw into document
// edits (a front trim, an append, or a full reload) and passes each edit to
// its presentation.Reconciler. The region the reconciler reports as
// re-presented decides which cached line renders are thrown away, so an
// append to a long file only renders the new lines.
//
// Opening and closing files, and changing their encoding, go through the
// FileController given in Options. Reordering highlight rules in the rules
// overlay saves them and restyles every open file.
//
// # Key Bindings
//
//   - o: Open a file; x: close it; X: close all
//   - Tab / Shift+Tab: Switch files
//   - E: Set the file's encoding
//   - Space: Toggle follow
//   - /: Search; n/N: next and previous match
//   - y/Y: Copy visible lines or the whole buffer
//   - r: Highlight rules; K/J reorder them
//   - T: Cycle theme
//   - ?: Help; q or Ctrl+C: Quit
package ui
