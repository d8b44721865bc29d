package instructions

import (
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Registered type names of the simple decorators.
const (
	InverterType     = "Inverter"
	ForceSuccessType = "ForceSuccess"
	ForceFailureType = "ForceFailure"
)

// Inverter ticks its child until finished and swaps Success and Failure.
type Inverter struct {
	decoratorBase
}

// NewInverter creates an Inverter decorator
func NewInverter() *Inverter {
	i := &Inverter{}
	i.initDecorator(i, InverterType)
	return i
}

func (i *Inverter) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	if i.childStatus().NeedsExecute() {
		i.child().ExecuteSingle(ui, ws)
	}
	switch status := i.childStatus(); status {
	case models.StatusSuccess:
		return models.StatusFailure
	case models.StatusFailure:
		return models.StatusSuccess
	default:
		return status
	}
}

// ForceSuccess maps any finished child status to Success.
type ForceSuccess struct {
	decoratorBase
}

// NewForceSuccess creates a ForceSuccess decorator
func NewForceSuccess() *ForceSuccess {
	f := &ForceSuccess{}
	f.initDecorator(f, ForceSuccessType)
	return f
}

func (f *ForceSuccess) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	if f.childStatus().NeedsExecute() {
		f.child().ExecuteSingle(ui, ws)
	}
	if status := f.childStatus(); !status.IsFinished() {
		return status
	}
	return models.StatusSuccess
}

// ForceFailure maps any finished child status to Failure.
type ForceFailure struct {
	decoratorBase
}

// NewForceFailure creates a ForceFailure decorator
func NewForceFailure() *ForceFailure {
	f := &ForceFailure{}
	f.initDecorator(f, ForceFailureType)
	return f
}

func (f *ForceFailure) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	if f.childStatus().NeedsExecute() {
		f.child().ExecuteSingle(ui, ws)
	}
	if status := f.childStatus(); !status.IsFinished() {
		return status
	}
	return models.StatusFailure
}

func init() {
	mustRegister(InverterType, func() Instruction { return NewInverter() })
	mustRegister(ForceSuccessType, func() Instruction { return NewForceSuccess() })
	mustRegister(ForceFailureType, func() Instruction { return NewForceFailure() })
}
