package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane is hidden.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// Log display limits.
const (
	// LogFetchLimit is the maximum number of log lines read per refresh.
	LogFetchLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// ActionTimeout bounds remote calls started from a key press.
	ActionTimeout = 60 * time.Second
)
