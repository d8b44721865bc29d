package instructions

import (
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// SequenceType is the registered type name of the Sequence instruction.
const SequenceType = "Sequence"

// Sequence ticks its children in order: it stops on the first Failure and
// succeeds when all children succeed.
type Sequence struct {
	compoundBase
}

// NewSequence creates a Sequence compound
func NewSequence() *Sequence {
	s := &Sequence{}
	s.initCompound(s, SequenceType)
	return s
}

func (s *Sequence) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	for _, child := range s.children {
		status := child.GetStatus()
		if status == models.StatusSuccess {
			continue
		}
		if status.NeedsExecute() {
			child.ExecuteSingle(ui, ws)
			break
		}
		logWarning(ui, "sequence %q was ticked again while already failed", s.GetName())
		return status
	}
	return s.calculateCompoundStatus()
}

func (s *Sequence) calculateCompoundStatus() models.ExecutionStatus {
	for _, child := range s.children {
		status := child.GetStatus()
		if status == models.StatusSuccess {
			continue
		}
		if status == models.StatusNotStarted || status == models.StatusNotFinished {
			return models.StatusNotFinished
		}
		// forward Running and Failure of the child
		return status
	}
	return models.StatusSuccess
}

func (s *Sequence) nextInstructionsImpl() []Instruction {
	if s.status.IsFinished() {
		return nil
	}
	for _, child := range s.children {
		status := child.GetStatus()
		if status == models.StatusSuccess {
			continue
		}
		if status.NeedsExecute() {
			return child.NextInstructions()
		}
		return nil
	}
	return nil
}

// FallbackType is the registered type name of the Fallback instruction.
const FallbackType = "Fallback"

// Fallback is the dual of Sequence: it stops on the first Success and
// fails when all children fail.
type Fallback struct {
	compoundBase
}

// NewFallback creates a Fallback compound
func NewFallback() *Fallback {
	f := &Fallback{}
	f.initCompound(f, FallbackType)
	return f
}

func (f *Fallback) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	for _, child := range f.children {
		status := child.GetStatus()
		if status == models.StatusFailure {
			continue
		}
		if status.NeedsExecute() {
			child.ExecuteSingle(ui, ws)
			break
		}
		logWarning(ui, "fallback %q was ticked again while already succeeded", f.GetName())
		return status
	}
	return f.calculateCompoundStatus()
}

func (f *Fallback) calculateCompoundStatus() models.ExecutionStatus {
	for _, child := range f.children {
		status := child.GetStatus()
		if status == models.StatusFailure {
			continue
		}
		if status == models.StatusNotStarted || status == models.StatusNotFinished {
			return models.StatusNotFinished
		}
		// forward Running and Success of the child
		return status
	}
	return models.StatusFailure
}

func (f *Fallback) nextInstructionsImpl() []Instruction {
	if f.status.IsFinished() {
		return nil
	}
	for _, child := range f.children {
		status := child.GetStatus()
		if status == models.StatusFailure {
			continue
		}
		if status.NeedsExecute() {
			return child.NextInstructions()
		}
		return nil
	}
	return nil
}

func init() {
	mustRegister(SequenceType, func() Instruction { return NewSequence() })
	mustRegister(FallbackType, func() Instruction { return NewFallback() })
}
