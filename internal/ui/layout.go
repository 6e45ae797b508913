package ui

import "time"

// Screen rows taken by chrome around the log box.
const (
	// HeaderRows covers the tab bar and the command bar.
	HeaderRows = 2

	// StatusRows is the status bar below the box.
	StatusRows = 1
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = 250 * time.Millisecond
)
