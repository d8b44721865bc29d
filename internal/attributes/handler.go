package attributes

import (
	"fmt"

	"github.com/ternarybob/oactree/internal/anyvalue"
)

// Handler stores attribute definitions, raw string attributes and
// constraints for one instruction or variable, and validates their
// consistency during setup.
type Handler struct {
	definitions []*Definition
	attrs       []StringAttribute
	constraints []Constraint
	failed      []string
}

// NewHandler creates an empty handler
func NewHandler() *Handler {
	return &Handler{}
}

// AddDefinition declares a new attribute and returns its definition for
// chained configuration. Duplicate names replace nothing; the first
// definition wins and the duplicate is returned detached.
func (h *Handler) AddDefinition(name string, valueType anyvalue.AnyType) *Definition {
	def := NewDefinition(name, valueType)
	if h.GetDefinition(name) == nil {
		h.definitions = append(h.definitions, def)
	}
	return def
}

// GetDefinition returns the definition for a name, or nil
func (h *Handler) GetDefinition(name string) *Definition {
	for _, d := range h.definitions {
		if d.GetName() == name {
			return d
		}
	}
	return nil
}

// GetDefinitions returns all declared definitions in declaration order
func (h *Handler) GetDefinitions() []*Definition {
	return h.definitions
}

// AddConstraint registers a constraint checked during Validate
func (h *Handler) AddConstraint(c Constraint) {
	h.constraints = append(h.constraints, c)
}

// HasAttribute reports whether a raw attribute with the name is present
func (h *Handler) HasAttribute(name string) bool {
	_, ok := FindAttribute(h.attrs, name)
	return ok
}

// AddAttribute adds a raw attribute; it fails on duplicate names
func (h *Handler) AddAttribute(name, value string) bool {
	if h.HasAttribute(name) {
		return false
	}
	h.attrs = append(h.attrs, StringAttribute{Name: name, Value: value})
	return true
}

// SetAttribute adds or replaces a raw attribute
func (h *Handler) SetAttribute(name, value string) {
	for i := range h.attrs {
		if h.attrs[i].Name == name {
			h.attrs[i].Value = value
			return
		}
	}
	h.attrs = append(h.attrs, StringAttribute{Name: name, Value: value})
}

// GetAttribute returns the raw value for a name, or the empty string
func (h *Handler) GetAttribute(name string) string {
	value, _ := FindAttribute(h.attrs, name)
	return value
}

// GetAttributes returns all raw attributes in insertion order
func (h *Handler) GetAttributes() []StringAttribute {
	return h.attrs
}

// Validate checks mandatory presence, literal parseability and all
// registered constraints. Failures accumulate in FailedConstraints.
func (h *Handler) Validate() bool {
	h.failed = nil
	for _, def := range h.definitions {
		raw, present := FindAttribute(h.attrs, def.GetName())
		if !present {
			if def.IsMandatory() {
				h.failed = append(h.failed, Exists(def.GetName()).String())
			}
			continue
		}
		info := def.Interpret(raw)
		if info.IsVariableName {
			if info.Value == "" {
				h.failed = append(h.failed,
					fmt.Sprintf("Attribute (%s) holds an empty variable name", def.GetName()))
			}
			continue
		}
		if _, err := anyvalue.ParseLiteral(def.GetType(), info.Value); err != nil {
			h.failed = append(h.failed, FixedType(def.GetName(), def.GetType()).String())
		}
	}
	for _, c := range h.constraints {
		if !c.Validate(h.attrs) {
			h.failed = append(h.failed, c.String())
		}
	}
	return len(h.failed) == 0
}

// FailedConstraints returns the failures of the last Validate call
func (h *Handler) FailedConstraints() []string {
	return h.failed
}

// ClearFailedConstraints discards recorded failures
func (h *Handler) ClearFailedConstraints() {
	h.failed = nil
}

// GetValueInfo interprets the raw value of a declared attribute. It fails
// when the attribute is absent or undeclared: every attribute read at
// runtime must have a matching definition.
func (h *Handler) GetValueInfo(name string) (ValueInfo, error) {
	def := h.GetDefinition(name)
	if def == nil {
		return ValueInfo{}, fmt.Errorf("attribute %q has no definition", name)
	}
	raw, present := FindAttribute(h.attrs, name)
	if !present {
		return ValueInfo{}, fmt.Errorf("attribute %q is not present", name)
	}
	return def.Interpret(raw), nil
}

// GetLiteralValue parses a declared literal attribute to its typed value
func (h *Handler) GetLiteralValue(name string) (anyvalue.AnyValue, error) {
	def := h.GetDefinition(name)
	if def == nil {
		return anyvalue.Empty(), fmt.Errorf("attribute %q has no definition", name)
	}
	info, err := h.GetValueInfo(name)
	if err != nil {
		return anyvalue.Empty(), err
	}
	if info.IsVariableName {
		return anyvalue.Empty(), fmt.Errorf("attribute %q refers to a variable", name)
	}
	return anyvalue.ParseLiteral(def.GetType(), info.Value)
}

// FormatFailedConstraints renders failures for setup error messages
func FormatFailedConstraints(failed []string) string {
	msg := ""
	for _, f := range failed {
		msg += "\n  " + f
	}
	return msg
}
