package instructions

import (
	"time"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/attributes"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Registered type names of the wait instructions.
const (
	WaitType      = "Wait"
	AsyncWaitType = "AsyncWait"
)

// Wait sleeps until its timeout elapses, cooperatively in short slices so
// Halt stays responsive. Without a timeout attribute it succeeds
// immediately; a halt fails the instruction.
type Wait struct {
	base
	finish time.Time
}

// NewWait creates a Wait action
func NewWait() *Wait {
	w := &Wait{}
	w.init(w, WaitType, models.CategoryAction)
	w.addAttributeDefinition(TimeoutAttribute, anyvalue.Float64Type).
		SetCategory(attributes.CategoryBoth)
	return w
}

func (w *Wait) initHook(ui interfaces.UserInterface, ws *workspace.Workspace) bool {
	timeout, ok, _ := GetTimeoutAttribute(w, ui, ws, TimeoutAttribute)
	if !ok {
		return false
	}
	w.finish = time.Now().Add(timeout)
	return true
}

func (w *Wait) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	for !w.IsHaltRequested() {
		remaining := time.Until(w.finish)
		if remaining <= 0 {
			break
		}
		slice := models.TimingAccuracy
		if remaining < slice {
			slice = remaining
		}
		time.Sleep(slice)
	}
	if w.IsHaltRequested() {
		return models.StatusFailure
	}
	return models.StatusSuccess
}

// AsyncWait is the non-blocking Wait: the first tick latches the deadline
// and every subsequent tick returns Running until it passes.
type AsyncWait struct {
	base
	finish time.Time
}

// NewAsyncWait creates an AsyncWait action
func NewAsyncWait() *AsyncWait {
	w := &AsyncWait{}
	w.init(w, AsyncWaitType, models.CategoryAction)
	w.addAttributeDefinition(TimeoutAttribute, anyvalue.Float64Type).
		SetCategory(attributes.CategoryBoth)
	return w
}

func (w *AsyncWait) initHook(ui interfaces.UserInterface, ws *workspace.Workspace) bool {
	timeout, ok, _ := GetTimeoutAttribute(w, ui, ws, TimeoutAttribute)
	if !ok {
		return false
	}
	w.finish = time.Now().Add(timeout)
	return true
}

func (w *AsyncWait) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	if !w.IsHaltRequested() && time.Now().Before(w.finish) {
		return models.StatusRunning
	}
	if w.IsHaltRequested() {
		return models.StatusFailure
	}
	return models.StatusSuccess
}

func init() {
	mustRegister(WaitType, func() Instruction { return NewWait() })
	mustRegister(AsyncWaitType, func() Instruction { return NewAsyncWait() })
}
