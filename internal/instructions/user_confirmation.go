package instructions

import (
	"sync"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/input"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// UserConfirmationType is the registered type name of UserConfirmation.
const UserConfirmationType = "UserConfirmation"

// UserConfirmation attribute names.
const (
	OKTextAttribute     = "okText"
	CancelTextAttribute = "cancelText"
)

// Default option labels.
const (
	defaultOKText     = "OK"
	defaultCancelText = "Cancel"
)

// UserConfirmation asks the user to confirm via a two-option choice; it
// succeeds iff the user picks the confirming option. Like Input it polls
// its future in short slices and cancels it on halt.
type UserConfirmation struct {
	base
	mu     sync.Mutex
	future input.Future
}

// NewUserConfirmation creates a UserConfirmation action
func NewUserConfirmation() *UserConfirmation {
	u := &UserConfirmation{}
	u.init(u, UserConfirmationType, models.CategoryAction)
	u.addAttributeDefinition(DescriptionAttribute, anyvalue.StringType)
	u.addAttributeDefinition(OKTextAttribute, anyvalue.StringType)
	u.addAttributeDefinition(CancelTextAttribute, anyvalue.StringType)
	return u
}

func (u *UserConfirmation) setFuture(f input.Future) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.future = f
}

func (u *UserConfirmation) currentFuture() input.Future {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.future
}

func (u *UserConfirmation) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	okText := u.GetAttribute(OKTextAttribute)
	if okText == "" {
		okText = defaultOKText
	}
	cancelText := u.GetAttribute(CancelTextAttribute)
	if cancelText == "" {
		cancelText = defaultCancelText
	}
	metadata := anyvalue.NewStruct(
		anyvalue.StructMember{Name: "description",
			Value: anyvalue.FromString(u.GetAttribute(DescriptionAttribute))},
	)
	future := ui.RequestUserInput(
		input.NewUserChoiceRequest([]string{okText, cancelText}, metadata))
	if !future.IsValid() {
		logError(ui, "instruction %q (type %s): user input is not supported",
			u.GetName(), u.GetType())
		return models.StatusFailure
	}
	u.setFuture(future)
	defer u.setFuture(nil)

	for !future.IsReady() {
		if u.IsHaltRequested() {
			future.Cancel()
			return models.StatusFailure
		}
		future.WaitFor(models.TimingAccuracy)
	}
	reply, err := future.GetValue()
	if err != nil {
		logError(ui, "instruction %q (type %s): %v", u.GetName(), u.GetType(), err)
		return models.StatusFailure
	}
	choice, ok := input.ParseUserChoiceReply(reply)
	if !ok {
		logWarning(ui, "instruction %q (type %s): user choice was refused",
			u.GetName(), u.GetType())
		return models.StatusFailure
	}
	if choice != 0 {
		return models.StatusFailure
	}
	return models.StatusSuccess
}

func (u *UserConfirmation) haltImpl() {
	if f := u.currentFuture(); f != nil {
		f.Cancel()
	}
}

func (u *UserConfirmation) resetHook(ui interfaces.UserInterface) {
	u.setFuture(nil)
}

func init() {
	mustRegister(UserConfirmationType, func() Instruction { return NewUserConfirmation() })
}
