package jobs

import (
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/input"
	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
)

// JobInterfaceAdapter turns an index-based JobInfoIO into the engine-facing
// JobInterface: instruction and variable identities are translated to job
// map indices and blocking input calls are funneled through an async input
// adapter.
type JobInterfaceAdapter struct {
	io     interfaces.JobInfoIO
	jobMap *JobMap
	input  *input.Adapter
	logger arbor.ILogger

	mu          sync.Mutex
	breakpoints map[uint32]bool
}

// NewJobInterfaceAdapter wires a JobInfoIO to a job map and announces the
// instruction count.
func NewJobInterfaceAdapter(io interfaces.JobInfoIO, jobMap *JobMap, logger arbor.ILogger) *JobInterfaceAdapter {
	a := &JobInterfaceAdapter{
		io:          io,
		jobMap:      jobMap,
		logger:      logger,
		breakpoints: make(map[uint32]bool),
	}
	a.input = input.NewAdapter(a.handleInputRequest, io.Interrupt)
	io.InitNumberOfInstructions(jobMap.GetNumberOfInstructions())
	return a
}

// Close cancels outstanding input requests and joins the input worker
func (a *JobInterfaceAdapter) Close() {
	a.input.Close()
}

// handleInputRequest runs on the input adapter's worker
func (a *JobInterfaceAdapter) handleInputRequest(request input.Request, id uint64) input.Reply {
	switch request.Type {
	case input.RequestUserValue:
		value := request.Value.Copy()
		if !a.io.GetUserValue(&value, request.Description) {
			return input.NewUserValueReply(false, anyvalue.Empty())
		}
		return input.NewUserValueReply(true, value)
	case input.RequestUserChoice:
		choice := a.io.GetUserChoice(request.Options, request.Metadata)
		if choice < 0 {
			return input.NewUserChoiceReply(false, choice)
		}
		return input.NewUserChoiceReply(true, choice)
	default:
		return input.Reply{}
	}
}

// UpdateInstructionStatus publishes an instruction state by index
func (a *JobInterfaceAdapter) UpdateInstructionStatus(instr interfaces.InstructionRef) {
	concrete, ok := instr.(instructions.Instruction)
	if !ok {
		return
	}
	idx, err := a.jobMap.GetInstructionIndex(concrete)
	if err != nil {
		a.logger.Warn().Err(err).Str("instruction", instr.GetType()).
			Msg("Status update for unmapped instruction dropped")
		return
	}
	a.mu.Lock()
	bp := a.breakpoints[idx]
	a.mu.Unlock()
	a.io.InstructionStateUpdated(idx, models.InstructionState{
		ExecutionStatus: instr.GetStatus(),
		BreakpointSet:   bp,
	})
}

// VariableUpdated publishes a variable update by index
func (a *JobInterfaceAdapter) VariableUpdated(name string, value anyvalue.AnyValue, connected bool) {
	idx, err := a.jobMap.GetVariableIndex(name)
	if err != nil {
		a.logger.Warn().Err(err).Str("variable", name).
			Msg("Update for unmapped variable dropped")
		return
	}
	a.io.VariableUpdated(idx, value, connected)
}

// PutValue forwards a value presentation
func (a *JobInterfaceAdapter) PutValue(value anyvalue.AnyValue, description string) bool {
	return a.io.PutValue(value, description)
}

// RequestUserInput enqueues an asynchronous input request
func (a *JobInterfaceAdapter) RequestUserInput(request input.Request) input.Future {
	return a.input.AddUserInputRequest(request)
}

// Message forwards a user message
func (a *JobInterfaceAdapter) Message(text string) {
	a.io.Message(text)
}

// Log forwards an engine log line
func (a *JobInterfaceAdapter) Log(severity models.LogSeverity, message string) {
	a.io.Log(severity, message)
}

// OnStateChange publishes a job state transition
func (a *JobInterfaceAdapter) OnStateChange(state models.JobState) {
	a.io.JobStateUpdated(state)
}

// OnBreakpointChange records the flag and republishes the instruction state
func (a *JobInterfaceAdapter) OnBreakpointChange(instr interfaces.InstructionRef, set bool) {
	concrete, ok := instr.(instructions.Instruction)
	if !ok {
		return
	}
	idx, err := a.jobMap.GetInstructionIndex(concrete)
	if err != nil {
		return
	}
	a.mu.Lock()
	if set {
		a.breakpoints[idx] = true
	} else {
		delete(a.breakpoints, idx)
	}
	a.mu.Unlock()
	a.io.InstructionStateUpdated(idx, models.InstructionState{
		ExecutionStatus: instr.GetStatus(),
		BreakpointSet:   set,
	})
}

// OnProcedureTick is a safe point for observers; nothing to forward
func (a *JobInterfaceAdapter) OnProcedureTick() {}
