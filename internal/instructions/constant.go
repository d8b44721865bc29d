package instructions

import (
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Registered type names of the constant-result instructions.
const (
	SucceedType = "Succeed"
	FailType    = "Fail"
)

// Succeed always succeeds.
type Succeed struct {
	base
}

// NewSucceed creates a Succeed action
func NewSucceed() *Succeed {
	s := &Succeed{}
	s.init(s, SucceedType, models.CategoryAction)
	return s
}

func (s *Succeed) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	return models.StatusSuccess
}

// Fail always fails.
type Fail struct {
	base
}

// NewFail creates a Fail action
func NewFail() *Fail {
	f := &Fail{}
	f.init(f, FailType, models.CategoryAction)
	return f
}

func (f *Fail) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	return models.StatusFailure
}

func init() {
	mustRegister(SucceedType, func() Instruction { return NewSucceed() })
	mustRegister(FailType, func() Instruction { return NewFail() })
}
