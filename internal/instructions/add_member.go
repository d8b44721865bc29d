package instructions

import (
	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// AddMemberType is the registered type name of the AddMember instruction.
const AddMemberType = "AddMember"

// MemberNameAttribute names the member AddMember creates.
const MemberNameAttribute = "memberName"

// AddMember reads its input variable and adds it as a new named member to
// the struct held by its output variable. It fails when the output is not
// a struct or already carries a member with that name.
type AddMember struct {
	base
}

// NewAddMember creates an AddMember action
func NewAddMember() *AddMember {
	a := &AddMember{}
	a.init(a, AddMemberType, models.CategoryAction)
	declareVariableNameAttribute(&a.base, InputVariableAttribute, true)
	declareVariableNameAttribute(&a.base, OutputVariableAttribute, true)
	a.addAttributeDefinition(MemberNameAttribute, anyvalue.StringType).SetMandatory()
	return a
}

func (a *AddMember) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	inputValue, ok := GetAttributeValue(a, ui, ws, InputVariableAttribute)
	if !ok {
		return models.StatusFailure
	}
	outputValue, ok := GetAttributeValue(a, ui, ws, OutputVariableAttribute)
	if !ok {
		return models.StatusFailure
	}
	memberName := a.GetAttribute(MemberNameAttribute)
	if memberName == "" {
		return models.StatusFailure
	}
	if err := outputValue.AddStructMember(memberName, inputValue); err != nil {
		logWarning(ui, "instruction %q (type %s): %v", a.GetName(), a.GetType(), err)
		return models.StatusFailure
	}
	if !SetValueFromAttributeName(a, ui, ws, OutputVariableAttribute, outputValue) {
		return models.StatusFailure
	}
	return models.StatusSuccess
}

func init() {
	mustRegister(AddMemberType, func() Instruction { return NewAddMember() })
}
