package attributes

import (
	"strings"

	"github.com/ternarybob/oactree/internal/anyvalue"
)

// VariableNamePrefix marks variable indirection in attributes whose
// category is CategoryBoth.
const VariableNamePrefix = "@"

// FieldSeparator splits a variable name from an optional field path in
// VariableName attribute values ("var.field.sub").
const FieldSeparator = "."

// Category tells how an attribute's string value is interpreted.
type Category int

const (
	// CategoryLiteral attributes parse the string to a value of the
	// declared type
	CategoryLiteral Category = iota
	// CategoryVariableName attributes hold a workspace variable name,
	// possibly with a field path suffix
	CategoryVariableName
	// CategoryBoth attributes are literals unless the value starts with
	// the variable name prefix
	CategoryBoth
)

// String returns the display name for the category
func (c Category) String() string {
	switch c {
	case CategoryLiteral:
		return "Literal"
	case CategoryVariableName:
		return "VariableName"
	case CategoryBoth:
		return "Both"
	default:
		return "Unknown"
	}
}

// Definition declares one attribute: its name, expected type, whether it is
// mandatory and how its string value is interpreted.
type Definition struct {
	name      string
	valueType anyvalue.AnyType
	mandatory bool
	category  Category
}

// NewDefinition creates a definition with category Literal and the given
// value type.
func NewDefinition(name string, valueType anyvalue.AnyType) *Definition {
	return &Definition{name: name, valueType: valueType}
}

// GetName returns the attribute name
func (d *Definition) GetName() string { return d.name }

// GetType returns the declared value type
func (d *Definition) GetType() anyvalue.AnyType { return d.valueType }

// IsMandatory reports whether the attribute must be present
func (d *Definition) IsMandatory() bool { return d.mandatory }

// GetCategory returns the interpretation category
func (d *Definition) GetCategory() Category { return d.category }

// SetMandatory marks the attribute as required; returns the definition for
// chaining.
func (d *Definition) SetMandatory() *Definition {
	d.mandatory = true
	return d
}

// SetCategory sets the interpretation category; returns the definition for
// chaining.
func (d *Definition) SetCategory(c Category) *Definition {
	d.category = c
	return d
}

// ValueInfo tells how a raw attribute value must be interpreted: as a
// workspace variable reference or as a literal.
type ValueInfo struct {
	IsVariableName bool
	Value          string
}

// Interpret resolves the raw string against the definition's category.
func (d *Definition) Interpret(raw string) ValueInfo {
	switch d.category {
	case CategoryVariableName:
		return ValueInfo{IsVariableName: true, Value: raw}
	case CategoryBoth:
		if strings.HasPrefix(raw, VariableNamePrefix) {
			return ValueInfo{IsVariableName: true, Value: raw[len(VariableNamePrefix):]}
		}
	}
	return ValueInfo{Value: raw}
}

// SplitFieldPath splits a variable reference into the variable name and an
// optional dotted field path.
func SplitFieldPath(ref string) (name string, path string) {
	if idx := strings.Index(ref, FieldSeparator); idx >= 0 {
		return ref[:idx], ref[idx+1:]
	}
	return ref, ""
}
