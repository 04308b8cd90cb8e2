package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth switches the books view to a narrower list pane.
	LayoutWideWidth = 160
)

// Log display limits.
const (
	// LogTailLines is how many lines of the log file the Logs view reads.
	LogTailLines = 2000
)

// Timing constants.
const (
	// DefaultPollTick is how often the model re-reads the store.
	DefaultPollTick = time.Second

	// MutationTimeout bounds a single API mutation started from the TUI.
	MutationTimeout = 15 * time.Second

	// FlashDuration is how long a status message stays in the command bar.
	FlashDuration = 4 * time.Second
)

// Chart glyphs.
const (
	barFull  = "█"
	barEmpty = "░"
)
