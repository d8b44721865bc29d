package models

import "time"

// Timing defaults shared by blocking leaves, the workspace and the runner.
const (
	// TimingAccuracy is the polling slice for cooperative blocking: every
	// blocking wait checks its halt condition at least this often.
	TimingAccuracy = 20 * time.Millisecond

	// DefaultSleepTime is the runner's idle sleep between ticks when the
	// tree reported NotFinished with no running leaves.
	DefaultSleepTime = 100 * time.Millisecond
)

// VarNamesDelimiter separates variable names in list-valued attributes.
const VarNamesDelimiter = ","
