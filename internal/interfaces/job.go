package interfaces

import (
	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/models"
)

// Job is the programmatic control surface of one running procedure.
// Instructions are addressed by their BFS index from the job map.
type Job interface {
	// GetInfo returns the static description of the job
	GetInfo() models.JobInfo

	// SetBreakpoint marks the instruction with the given index; unknown
	// indices are ignored after logging
	SetBreakpoint(instructionIdx uint32)

	// RemoveBreakpoint removes the marker for the given index
	RemoveBreakpoint(instructionIdx uint32)

	Start()
	Step()
	Pause()
	Reset()
	Halt()

	// Close terminates the job's worker resources. Safe to call even when
	// Start was never invoked.
	Close()
}

// JobInfoIO is the observation surface external UIs implement. All indices
// refer to the job map; values are self-describing AnyValues.
type JobInfoIO interface {
	// InitNumberOfInstructions announces the instruction count before any
	// state updates are published
	InitNumberOfInstructions(n uint32)

	// InstructionStateUpdated publishes a new instruction state
	InstructionStateUpdated(idx uint32, state models.InstructionState)

	// VariableUpdated publishes a new variable value
	VariableUpdated(idx uint32, value anyvalue.AnyValue, connected bool)

	// JobStateUpdated publishes a job state transition
	JobStateUpdated(state models.JobState)

	// PutValue presents a value to the user
	PutValue(value anyvalue.AnyValue, description string) bool

	// GetUserValue blocks for a user-provided value; false on refusal
	GetUserValue(value *anyvalue.AnyValue, description string) bool

	// GetUserChoice blocks for a selection among options; negative on refusal
	GetUserChoice(options []string, metadata anyvalue.AnyValue) int

	// Interrupt cancels a pending GetUserValue/GetUserChoice call
	Interrupt(id uint64)

	Message(text string)
	Log(severity models.LogSeverity, message string)
}
