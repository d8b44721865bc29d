package workspace

import (
	"fmt"
	"sync"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/models"
)

// LocalVariableType is the registered type name of the Local variable.
const LocalVariableType = "Local"

// Attribute names understood by the Local variable.
const (
	JSONTypeAttribute  = "type"
	JSONValueAttribute = "value"
)

// LocalVariable holds its value in process memory. It initialises from the
// optional `type` and `value` JSON attributes and is always connected once
// set up.
type LocalVariable struct {
	Base

	mu        sync.Mutex
	value     anyvalue.AnyValue
	initial   anyvalue.AnyValue
	setupDone bool
}

// NewLocalVariable creates an uninitialised Local variable
func NewLocalVariable() *LocalVariable {
	return &LocalVariable{Base: NewBase(LocalVariableType)}
}

// Setup parses the `type`/`value` attributes. An absent type yields the
// empty value, which later takes the type of the first assignment. Setup is
// idempotent.
func (v *LocalVariable) Setup(registry *anyvalue.TypeRegistry) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.setupDone {
		return nil
	}
	value := anyvalue.Empty()
	if v.HasAttribute(JSONTypeAttribute) {
		parsedType, err := anyvalue.ParseTypeJSON(registry, v.GetAttribute(JSONTypeAttribute))
		if err != nil {
			return &models.VariableSetupError{
				VariableName: v.GetName(),
				VariableType: v.GetType(),
				Reason:       fmt.Sprintf("invalid type attribute: %v", err),
			}
		}
		if v.HasAttribute(JSONValueAttribute) {
			value, err = anyvalue.ParseValueJSON(parsedType, v.GetAttribute(JSONValueAttribute))
			if err != nil {
				return &models.VariableSetupError{
					VariableName: v.GetName(),
					VariableType: v.GetType(),
					Reason:       fmt.Sprintf("invalid value attribute: %v", err),
				}
			}
		} else {
			value = anyvalue.Zero(parsedType)
		}
	}
	v.value = value
	v.initial = value.Copy()
	v.setupDone = true
	return nil
}

// Teardown drops the value; a further Setup re-initialises
func (v *LocalVariable) Teardown() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = anyvalue.Empty()
	v.initial = anyvalue.Empty()
	v.setupDone = false
}

// GetValue returns a copy of the value or an addressed field
func (v *LocalVariable) GetValue(path string) (anyvalue.AnyValue, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.setupDone || v.value.IsEmpty() {
		return anyvalue.Empty(), false
	}
	result, err := v.value.Field(path)
	if err != nil {
		return anyvalue.Empty(), false
	}
	return result, true
}

// SetValue assigns the value or an addressed field and notifies observers
func (v *LocalVariable) SetValue(value anyvalue.AnyValue, path string) bool {
	v.mu.Lock()
	if !v.setupDone {
		v.mu.Unlock()
		return false
	}
	if path == "" {
		// whole-value assignment replaces, like dynamic value assignment;
		// field assignments below stay type checked
		v.value = value.Copy()
	} else if err := v.value.SetField(path, value); err != nil {
		v.mu.Unlock()
		return false
	}
	snapshot := v.value.Copy()
	v.mu.Unlock()

	v.Notify(snapshot, true)
	return true
}

// IsAvailable reports whether the variable holds a usable value
func (v *LocalVariable) IsAvailable() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.setupDone && !v.value.IsEmpty()
}

// Reset restores the initial value from Setup and notifies observers
func (v *LocalVariable) Reset() {
	v.mu.Lock()
	if !v.setupDone {
		v.mu.Unlock()
		return
	}
	v.value = v.initial.Copy()
	snapshot := v.value.Copy()
	v.mu.Unlock()

	v.Notify(snapshot, true)
}
