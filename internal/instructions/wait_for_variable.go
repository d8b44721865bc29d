package instructions

import (
	"time"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/attributes"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// WaitForVariableType is the registered type name of WaitForVariable.
const WaitForVariableType = "WaitForVariable"

// WaitForVariable blocks until the named variable is connected with a
// valid value or the timeout elapses. The wait is cooperative: a halt
// aborts it within one polling slice.
type WaitForVariable struct {
	base
}

// NewWaitForVariable creates a WaitForVariable action
func NewWaitForVariable() *WaitForVariable {
	w := &WaitForVariable{}
	w.init(w, WaitForVariableType, models.CategoryAction)
	declareVariableNameAttribute(&w.base, VariableNameAttribute, true)
	w.addAttributeDefinition(TimeoutAttribute, anyvalue.Float64Type).
		SetCategory(attributes.CategoryBoth)
	return w
}

func (w *WaitForVariable) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	info, err := w.attrs.GetValueInfo(VariableNameAttribute)
	if err != nil {
		logWarning(ui, "instruction %q (type %s): %v", w.GetName(), w.GetType(), err)
		return models.StatusFailure
	}
	timeout, ok, present := GetTimeoutAttribute(w, ui, ws, TimeoutAttribute)
	if !ok {
		return models.StatusFailure
	}
	if !present {
		// without a timeout the wait degenerates to an availability check
		timeout = 0
	}
	name, _ := attributes.SplitFieldPath(info.Value)
	if !ws.WaitForVariable(name, timeout, w.IsHaltRequested) {
		if !w.IsHaltRequested() {
			logWarning(ui, "variable %q did not become available within %s",
				name, timeout.Round(time.Millisecond))
		}
		return models.StatusFailure
	}
	return models.StatusSuccess
}

func init() {
	mustRegister(WaitForVariableType, func() Instruction { return NewWaitForVariable() })
}
