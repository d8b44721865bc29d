package runner

import (
	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/models"
)

// Breakpoint marks an instruction whose next tick must not happen while
// the status is Set. Released is transient: the next time the engine
// reaches the instruction the breakpoint lets that tick through once and
// transitions back to Set.
type Breakpoint struct {
	instruction instructions.Instruction
	status      models.BreakpointStatus
}

// NewBreakpoint creates a breakpoint in the Set state
func NewBreakpoint(instr instructions.Instruction) *Breakpoint {
	return &Breakpoint{instruction: instr, status: models.BreakpointSet}
}

// GetInstruction returns the marked instruction
func (b *Breakpoint) GetInstruction() instructions.Instruction {
	return b.instruction
}

// GetStatus returns the breakpoint status
func (b *Breakpoint) GetStatus() models.BreakpointStatus {
	return b.status
}

// SetStatus updates the breakpoint status
func (b *Breakpoint) SetStatus(status models.BreakpointStatus) {
	b.status = status
}
