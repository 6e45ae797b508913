// Package presentation turns classified tokens into styled ranges for a log
// document and keeps them current while the document grows.
//
// # Damage
//
// After an edit, DamageRepairer.DamageRegion narrows the partition that
// contains the edit to the lines the edit touched:
//
//   - single-line edits damage exactly the line they happened on
//   - edits ending inside a line delimiter extend to the end of the next line
//   - any failed position lookup degrades to the whole partition
//
// # Repair
//
// DamageRepairer.CreatePresentation pulls tokens from a Scanner, merges
// adjacent tokens with equal styles into runs and widens every run to the
// full line containing its start (delimiter included) before committing it.
// Log highlighting is line oriented: a rule colors the whole line it matched.
//
// # Overlap
//
// Within a pass each line is a slot identified by offset and length. The
// first run committed for a slot always wins it; a later run replaces it only
// with a numerically lower priority (0 beats 1). Runs with the default style
// occupy slots like any other. A pass begins whenever the output
// presentation is still empty.
//
// # Reconciling
//
// Reconciler owns the ranges of the whole document. It shifts cached ranges
// behind each edit, asks the repairer for the damage of every partition the
// edit touched and re-presents just those partitions. StylesIn resolves the
// cached ranges into non-overlapping segments for rendering.
//
// Nothing in this package is safe for concurrent use; all calls happen on the
// UI goroutine.
package presentation
