package instructions

import (
	"github.com/ternarybob/oactree/internal/attributes"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Registered type names of the variable manipulation instructions.
const (
	CopyType          = "Copy"
	ResetVariableType = "ResetVariable"
	VarExistsType     = "VarExists"
)

// Copy reads its input variable and writes the value to its output
// variable. Missing or incompatible variables fail the instruction.
type Copy struct {
	base
}

// NewCopy creates a Copy action
func NewCopy() *Copy {
	c := &Copy{}
	c.init(c, CopyType, models.CategoryAction)
	declareVariableNameAttribute(&c.base, InputVariableAttribute, true)
	declareVariableNameAttribute(&c.base, OutputVariableAttribute, true)
	return c
}

func (c *Copy) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	value, ok := GetAttributeValue(c, ui, ws, InputVariableAttribute)
	if !ok {
		return models.StatusFailure
	}
	if !SetValueFromAttributeName(c, ui, ws, OutputVariableAttribute, value) {
		return models.StatusFailure
	}
	return models.StatusSuccess
}

// ResetVariable restores the named workspace variable to its freshly set
// up state.
type ResetVariable struct {
	base
}

// NewResetVariable creates a ResetVariable action
func NewResetVariable() *ResetVariable {
	r := &ResetVariable{}
	r.init(r, ResetVariableType, models.CategoryAction)
	declareVariableNameAttribute(&r.base, VariableNameAttribute, true)
	return r
}

func (r *ResetVariable) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	info, err := r.attrs.GetValueInfo(VariableNameAttribute)
	if err != nil {
		logWarning(ui, "instruction %q (type %s): %v", r.GetName(), r.GetType(), err)
		return models.StatusFailure
	}
	if !ws.ResetVariable(info.Value) {
		logWarning(ui, "instruction %q (type %s): cannot reset variable %q",
			r.GetName(), r.GetType(), info.Value)
		return models.StatusFailure
	}
	return models.StatusSuccess
}

// VarExists succeeds iff the named variable resolves in the workspace.
type VarExists struct {
	base
}

// NewVarExists creates a VarExists action
func NewVarExists() *VarExists {
	v := &VarExists{}
	v.init(v, VarExistsType, models.CategoryAction)
	declareVariableNameAttribute(&v.base, VariableNameAttribute, true)
	return v
}

func (v *VarExists) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	info, err := v.attrs.GetValueInfo(VariableNameAttribute)
	if err != nil {
		logWarning(ui, "instruction %q (type %s): %v", v.GetName(), v.GetType(), err)
		return models.StatusFailure
	}
	name, path := attributes.SplitFieldPath(info.Value)
	if !ws.HasVariable(name) {
		logWarning(ui, "variable %q does not exist in the workspace", name)
		return models.StatusFailure
	}
	if path != "" {
		if value, ok := ws.GetValue(info.Value); !ok || value.IsEmpty() {
			logWarning(ui, "variable field %q does not resolve", info.Value)
			return models.StatusFailure
		}
	}
	return models.StatusSuccess
}

func init() {
	mustRegister(CopyType, func() Instruction { return NewCopy() })
	mustRegister(ResetVariableType, func() Instruction { return NewResetVariable() })
	mustRegister(VarExistsType, func() Instruction { return NewVarExists() })
}
