package interfaces

import (
	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/input"
	"github.com/ternarybob/oactree/internal/models"
)

// InstructionRef is the read-only view of an instruction that status
// notifications carry. The concrete instruction types satisfy it.
type InstructionRef interface {
	GetType() string
	GetName() string
	GetStatus() models.ExecutionStatus
}

// UserInterface is the engine's outward face: instructions publish status
// and variable updates through it, request user input and emit messages
// and log lines. Implementations must tolerate calls from the tick worker
// and from variable notification contexts.
type UserInterface interface {
	// UpdateInstructionStatus is called after every status transition
	UpdateInstructionStatus(instruction InstructionRef)

	// VariableUpdated is called on workspace variable changes
	VariableUpdated(name string, value anyvalue.AnyValue, connected bool)

	// PutValue presents a value to the user; false signals refusal
	PutValue(value anyvalue.AnyValue, description string) bool

	// RequestUserInput issues an asynchronous input request. Implementations
	// that do not support input return input.UnsupportedFuture.
	RequestUserInput(request input.Request) input.Future

	// Message presents a plain text message to the user
	Message(text string)

	// Log emits a log line at the given severity
	Log(severity models.LogSeverity, message string)
}

// JobStateMonitor observes job state transitions, breakpoint changes and
// tick boundaries.
type JobStateMonitor interface {
	// OnStateChange is called on every job state transition
	OnStateChange(state models.JobState)

	// OnBreakpointChange is called whenever the breakpoint set changes
	OnBreakpointChange(instruction InstructionRef, set bool)

	// OnProcedureTick is called after every tick, never concurrently with
	// instruction execution. Observers may safely query the procedure here.
	OnProcedureTick()
}

// JobInterface bundles the two collaborator roles a job needs.
type JobInterface interface {
	UserInterface
	JobStateMonitor
}
