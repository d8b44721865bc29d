package attributes

import (
	"fmt"

	"github.com/ternarybob/oactree/internal/anyvalue"
)

// StringAttribute is one raw (name, value) attribute pair.
type StringAttribute struct {
	Name  string
	Value string
}

// FindAttribute returns the value of the named attribute in a raw list
func FindAttribute(attrs []StringAttribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Constraint validates a raw attribute list. Constraints compose with
// And/Or/Xor/Not and render themselves for failure reports.
type Constraint interface {
	Validate(attrs []StringAttribute) bool
	String() string
}

type existsConstraint struct {
	attrName string
}

// Exists requires the named attribute to be present
func Exists(attrName string) Constraint {
	return existsConstraint{attrName: attrName}
}

func (c existsConstraint) Validate(attrs []StringAttribute) bool {
	_, ok := FindAttribute(attrs, c.attrName)
	return ok
}

func (c existsConstraint) String() string {
	return fmt.Sprintf("Exists(%s)", c.attrName)
}

type fixedTypeConstraint struct {
	attrName string
	attrType anyvalue.AnyType
}

// FixedType requires the named attribute to be present and parseable as the
// given type.
func FixedType(attrName string, attrType anyvalue.AnyType) Constraint {
	return fixedTypeConstraint{attrName: attrName, attrType: attrType}
}

func (c fixedTypeConstraint) Validate(attrs []StringAttribute) bool {
	value, ok := FindAttribute(attrs, c.attrName)
	if !ok {
		return false
	}
	_, err := anyvalue.ParseLiteral(c.attrType, value)
	return err == nil
}

func (c fixedTypeConstraint) String() string {
	return fmt.Sprintf("Type of (%s) must be (%s)", c.attrName, c.attrType.String())
}

type andConstraint struct{ left, right Constraint }

// And requires both constraints to hold
func And(left, right Constraint) Constraint {
	return andConstraint{left: left, right: right}
}

func (c andConstraint) Validate(attrs []StringAttribute) bool {
	return c.left.Validate(attrs) && c.right.Validate(attrs)
}

func (c andConstraint) String() string {
	return fmt.Sprintf("(%s) AND (%s)", c.left.String(), c.right.String())
}

type orConstraint struct{ left, right Constraint }

// Or requires at least one of the constraints to hold
func Or(left, right Constraint) Constraint {
	return orConstraint{left: left, right: right}
}

func (c orConstraint) Validate(attrs []StringAttribute) bool {
	return c.left.Validate(attrs) || c.right.Validate(attrs)
}

func (c orConstraint) String() string {
	return fmt.Sprintf("(%s) OR (%s)", c.left.String(), c.right.String())
}

type xorConstraint struct{ left, right Constraint }

// Xor requires exactly one of the constraints to hold
func Xor(left, right Constraint) Constraint {
	return xorConstraint{left: left, right: right}
}

func (c xorConstraint) Validate(attrs []StringAttribute) bool {
	return c.left.Validate(attrs) != c.right.Validate(attrs)
}

func (c xorConstraint) String() string {
	return fmt.Sprintf("(%s) XOR (%s)", c.left.String(), c.right.String())
}

type notConstraint struct{ inner Constraint }

// Not inverts a constraint
func Not(inner Constraint) Constraint {
	return notConstraint{inner: inner}
}

func (c notConstraint) Validate(attrs []StringAttribute) bool {
	return !c.inner.Validate(attrs)
}

func (c notConstraint) String() string {
	return fmt.Sprintf("NOT (%s)", c.inner.String())
}
