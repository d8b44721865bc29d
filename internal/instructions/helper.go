package instructions

import (
	"fmt"
	"time"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/attributes"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Shared attribute names across instruction kinds.
const (
	InputVariableAttribute  = "inputVar"
	OutputVariableAttribute = "outputVar"
	VariableNameAttribute   = "varName"
	TimeoutAttribute        = "timeout"
	DescriptionAttribute    = "description"
)

// logWarning emits an engine warning through the user interface
func logWarning(ui interfaces.UserInterface, format string, args ...any) {
	ui.Log(models.SeverityWarning, fmt.Sprintf(format, args...))
}

// logError emits an engine error through the user interface
func logError(ui interfaces.UserInterface, format string, args ...any) {
	ui.Log(models.SeverityError, fmt.Sprintf(format, args...))
}

// GetAttributeValue reads an attribute at execution time: VariableName
// attributes (and Both with the indirection marker) resolve through the
// workspace; literals parse against the declared type. Failures log a
// warning and return false.
func GetAttributeValue(instr Instruction, ui interfaces.UserInterface,
	ws *workspace.Workspace, attrName string) (anyvalue.AnyValue, bool) {
	handler := instr.AttributeHandler()
	def := handler.GetDefinition(attrName)
	if def == nil {
		logWarning(ui, "instruction %q (type %s): attribute %q has no definition",
			instr.GetName(), instr.GetType(), attrName)
		return anyvalue.Empty(), false
	}
	info, err := handler.GetValueInfo(attrName)
	if err != nil {
		logWarning(ui, "instruction %q (type %s): %v", instr.GetName(), instr.GetType(), err)
		return anyvalue.Empty(), false
	}
	if info.IsVariableName {
		value, ok := ws.GetValue(info.Value)
		if !ok {
			logWarning(ui, "instruction %q (type %s): cannot read variable %q",
				instr.GetName(), instr.GetType(), info.Value)
			return anyvalue.Empty(), false
		}
		if !def.GetType().IsEmpty() {
			converted, err := value.ConvertTo(def.GetType())
			if err != nil {
				logWarning(ui, "instruction %q (type %s): attribute %q: %v",
					instr.GetName(), instr.GetType(), attrName, err)
				return anyvalue.Empty(), false
			}
			return converted, true
		}
		return value, true
	}
	value, err := anyvalue.ParseLiteral(def.GetType(), info.Value)
	if err != nil {
		logWarning(ui, "instruction %q (type %s): attribute %q: %v",
			instr.GetName(), instr.GetType(), attrName, err)
		return anyvalue.Empty(), false
	}
	return value, true
}

// SetValueFromAttributeName writes a value to the workspace variable an
// OUTPUT-style attribute names. The attribute must have VariableName
// category (or Both with the marker).
func SetValueFromAttributeName(instr Instruction, ui interfaces.UserInterface,
	ws *workspace.Workspace, attrName string, value anyvalue.AnyValue) bool {
	handler := instr.AttributeHandler()
	info, err := handler.GetValueInfo(attrName)
	if err != nil {
		logWarning(ui, "instruction %q (type %s): %v", instr.GetName(), instr.GetType(), err)
		return false
	}
	if !info.IsVariableName {
		logWarning(ui, "instruction %q (type %s): attribute %q does not name a variable",
			instr.GetName(), instr.GetType(), attrName)
		return false
	}
	if !ws.SetValue(info.Value, value) {
		logWarning(ui, "instruction %q (type %s): cannot write variable %q",
			instr.GetName(), instr.GetType(), info.Value)
		return false
	}
	return true
}

// GetTimeoutAttribute reads a float64 seconds attribute (literal or via
// variable) as a duration. Absent attributes return (0, true, false).
func GetTimeoutAttribute(instr Instruction, ui interfaces.UserInterface,
	ws *workspace.Workspace, attrName string) (time.Duration, bool, bool) {
	if !instr.HasAttribute(attrName) {
		return 0, true, false
	}
	value, ok := GetAttributeValue(instr, ui, ws, attrName)
	if !ok {
		return 0, false, false
	}
	seconds, err := value.AsFloat64()
	if err != nil {
		logWarning(ui, "instruction %q (type %s): attribute %q is not numeric",
			instr.GetName(), instr.GetType(), attrName)
		return 0, false, false
	}
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds * float64(time.Second)), true, true
}

// declareVariableNameAttribute is the shared declaration for attributes
// holding workspace variable references.
func declareVariableNameAttribute(b *base, name string, mandatory bool) {
	def := b.addAttributeDefinition(name, anyvalue.EmptyType).
		SetCategory(attributes.CategoryVariableName)
	if mandatory {
		def.SetMandatory()
	}
}
