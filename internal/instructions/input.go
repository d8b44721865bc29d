package instructions

import (
	"sync"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/input"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// InputType is the registered type name of the Input instruction.
const InputType = "Input"

// Input requests a value from the user and stores the reply in its output
// variable. The request is asynchronous: the instruction polls the future
// in short slices so Halt stays responsive, cancelling the request on halt.
type Input struct {
	base
	mu     sync.Mutex
	future input.Future
}

// NewInput creates an Input action
func NewInput() *Input {
	i := &Input{}
	i.init(i, InputType, models.CategoryAction)
	declareVariableNameAttribute(&i.base, OutputVariableAttribute, true)
	i.addAttributeDefinition(DescriptionAttribute, anyvalue.StringType)
	return i
}

func (i *Input) setFuture(f input.Future) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.future = f
}

func (i *Input) currentFuture() input.Future {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.future
}

func (i *Input) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	template := anyvalue.Empty()
	if value, ok := GetAttributeValue(i, ui, ws, OutputVariableAttribute); ok {
		template = value
	}
	future := ui.RequestUserInput(
		input.NewUserValueRequest(template, i.GetAttribute(DescriptionAttribute)))
	if !future.IsValid() {
		logError(ui, "instruction %q (type %s): user input is not supported",
			i.GetName(), i.GetType())
		return models.StatusFailure
	}
	i.setFuture(future)
	defer i.setFuture(nil)

	for !future.IsReady() {
		if i.IsHaltRequested() {
			future.Cancel()
			return models.StatusFailure
		}
		future.WaitFor(models.TimingAccuracy)
	}
	reply, err := future.GetValue()
	if err != nil {
		logError(ui, "instruction %q (type %s): %v", i.GetName(), i.GetType(), err)
		return models.StatusFailure
	}
	value, ok := input.ParseUserValueReply(reply)
	if !ok {
		logWarning(ui, "instruction %q (type %s): user input was refused",
			i.GetName(), i.GetType())
		return models.StatusFailure
	}
	if !SetValueFromAttributeName(i, ui, ws, OutputVariableAttribute, value) {
		return models.StatusFailure
	}
	return models.StatusSuccess
}

func (i *Input) haltImpl() {
	if f := i.currentFuture(); f != nil {
		f.Cancel()
	}
}

func (i *Input) resetHook(ui interfaces.UserInterface) {
	i.setFuture(nil)
}

func init() {
	mustRegister(InputType, func() Instruction { return NewInput() })
}
