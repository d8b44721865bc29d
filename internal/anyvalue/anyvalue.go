package anyvalue

import (
	"errors"
	"fmt"
	"strings"
)

// Field path separator for nested member access ("a.b.c").
const FieldSeparator = "."

var (
	// ErrNoSuchField is returned when a field path does not resolve.
	ErrNoSuchField = errors.New("no such field")
	// ErrTypeMismatch is returned when an assignment or conversion is not
	// allowed between the involved types.
	ErrTypeMismatch = errors.New("type mismatch")
)

// AnyValue is a self-describing dynamic value: a type plus a payload.
// Scalars carry a normalized Go value, structs and arrays carry ordered
// element values. The zero AnyValue is the empty value.
type AnyValue struct {
	typ AnyType
	// scalar payload, normalized: bool, int64 (all signed), uint64 (all
	// unsigned), float64 (all floats) or string
	scalar any
	// struct members or array elements, in declared order
	elements []*AnyValue
}

// Empty returns the empty value
func Empty() AnyValue {
	return AnyValue{}
}

// Zero constructs the zero value of the given type
func Zero(t AnyType) AnyValue {
	v := AnyValue{typ: t}
	switch t.Code {
	case TypeBool:
		v.scalar = false
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		v.scalar = int64(0)
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		v.scalar = uint64(0)
	case TypeFloat32, TypeFloat64:
		v.scalar = float64(0)
	case TypeString:
		v.scalar = ""
	case TypeStruct:
		for _, m := range t.Members {
			mv := Zero(m.Type)
			v.elements = append(v.elements, &mv)
		}
	case TypeArray:
		// zero-length array
	}
	return v
}

// FromBool wraps a bool
func FromBool(b bool) AnyValue {
	return AnyValue{typ: BoolType, scalar: b}
}

// FromInt64 wraps a signed integer with the given integer type
func FromInt64(t AnyType, i int64) AnyValue {
	return AnyValue{typ: t, scalar: i}
}

// FromUInt64 wraps an unsigned integer with the given integer type
func FromUInt64(t AnyType, u uint64) AnyValue {
	return AnyValue{typ: t, scalar: u}
}

// FromFloat64 wraps a float with the given float type
func FromFloat64(t AnyType, f float64) AnyValue {
	return AnyValue{typ: t, scalar: f}
}

// FromString wraps a string
func FromString(s string) AnyValue {
	return AnyValue{typ: StringType, scalar: s}
}

// FromInt32 wraps an int32
func FromInt32(i int32) AnyValue {
	return FromInt64(Int32Type, int64(i))
}

// NewStruct builds a struct value from ordered member values
func NewStruct(members ...StructMember) AnyValue {
	t := AnyType{Code: TypeStruct}
	v := AnyValue{}
	for _, m := range members {
		t.Members = append(t.Members, Member{Name: m.Name, Type: m.Value.typ})
		mv := m.Value
		v.elements = append(v.elements, &mv)
	}
	v.typ = t
	return v
}

// StructMember pairs a member name with its value for NewStruct.
type StructMember struct {
	Name  string
	Value AnyValue
}

// NewArray builds an array value; all elements must share the element type
func NewArray(element AnyType, values ...AnyValue) (AnyValue, error) {
	v := AnyValue{typ: ArrayType(element)}
	for _, e := range values {
		if !e.typ.Equals(element) {
			return Empty(), fmt.Errorf("%w: array element %s does not match %s",
				ErrTypeMismatch, e.typ.String(), element.String())
		}
		ev := e
		v.elements = append(v.elements, &ev)
	}
	return v, nil
}

// GetType returns the type of the value
func (v AnyValue) GetType() AnyType {
	return v.typ
}

// IsEmpty reports whether the value is the empty value
func (v AnyValue) IsEmpty() bool {
	return v.typ.IsEmpty()
}

// IsScalar reports whether the value holds a scalar
func (v AnyValue) IsScalar() bool {
	return v.typ.Code.IsScalar()
}

// NumElements returns the number of struct members or array elements
func (v AnyValue) NumElements() int {
	return len(v.elements)
}

// Field resolves a dotted member path and returns a deep copy of the
// addressed sub-value. The empty path addresses the whole value.
func (v AnyValue) Field(path string) (AnyValue, error) {
	cur := &v
	if path != "" {
		for _, part := range strings.Split(path, FieldSeparator) {
			next, err := cur.member(part)
			if err != nil {
				return Empty(), err
			}
			cur = next
		}
	}
	return cur.Copy(), nil
}

// HasField reports whether the dotted member path resolves
func (v AnyValue) HasField(path string) bool {
	_, err := v.Field(path)
	return err == nil
}

// SetField assigns the addressed sub-value; the assignment is type checked
// against the existing member type. The empty path replaces the whole value
// (the receiver must be addressed through a pointer).
func (v *AnyValue) SetField(path string, val AnyValue) error {
	if path == "" {
		return v.Assign(val)
	}
	cur := v
	for _, part := range strings.Split(path, FieldSeparator) {
		next, err := cur.member(part)
		if err != nil {
			return err
		}
		cur = next
	}
	return cur.Assign(val)
}

func (v *AnyValue) member(name string) (*AnyValue, error) {
	if v.typ.Code != TypeStruct {
		return nil, fmt.Errorf("%w: %q on non-struct value of type %s",
			ErrNoSuchField, name, v.typ.String())
	}
	for i, m := range v.typ.Members {
		if m.Name == name {
			return v.elements[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchField, name)
}

// Element returns a deep copy of the array element at idx
func (v AnyValue) Element(idx int) (AnyValue, error) {
	if v.typ.Code != TypeArray {
		return Empty(), fmt.Errorf("%w: element access on type %s", ErrTypeMismatch, v.typ.String())
	}
	if idx < 0 || idx >= len(v.elements) {
		return Empty(), fmt.Errorf("array index %d out of range [0,%d)", idx, len(v.elements))
	}
	return v.elements[idx].Copy(), nil
}

// Append adds an element to an array value
func (v *AnyValue) Append(e AnyValue) error {
	if v.typ.Code != TypeArray {
		return fmt.Errorf("%w: append on type %s", ErrTypeMismatch, v.typ.String())
	}
	if v.typ.Element != nil && !e.typ.Equals(*v.typ.Element) {
		return fmt.Errorf("%w: array element %s does not match %s",
			ErrTypeMismatch, e.typ.String(), v.typ.Element.String())
	}
	ev := e.Copy()
	v.elements = append(v.elements, &ev)
	return nil
}

// AddStructMember appends a new named member to a struct value. It fails
// on non-struct values and duplicate member names.
func (v *AnyValue) AddStructMember(name string, value AnyValue) error {
	if v.typ.Code != TypeStruct {
		return fmt.Errorf("%w: cannot add member to type %s", ErrTypeMismatch, v.typ.String())
	}
	if name == "" {
		return fmt.Errorf("member name cannot be empty")
	}
	if v.typ.HasMember(name) {
		return fmt.Errorf("member %q already present", name)
	}
	v.typ.Members = append(v.typ.Members, Member{Name: name, Type: value.typ})
	mv := value.Copy()
	v.elements = append(v.elements, &mv)
	return nil
}

// Assign replaces the value with val. An empty receiver accepts any value
// (taking its type); a typed receiver requires a convertible value.
func (v *AnyValue) Assign(val AnyValue) error {
	if v.typ.IsEmpty() {
		*v = val.Copy()
		return nil
	}
	converted, err := val.ConvertTo(v.typ)
	if err != nil {
		return err
	}
	*v = converted
	return nil
}

// Copy returns a deep copy of the value
func (v AnyValue) Copy() AnyValue {
	out := AnyValue{typ: v.typ, scalar: v.scalar}
	if len(v.elements) > 0 {
		out.elements = make([]*AnyValue, len(v.elements))
		for i, e := range v.elements {
			c := e.Copy()
			out.elements[i] = &c
		}
	}
	return out
}

// Equals reports deep equality of value and type
func (v AnyValue) Equals(other AnyValue) bool {
	if !v.typ.Equals(other.typ) {
		return false
	}
	if v.scalar != other.scalar {
		return false
	}
	if len(v.elements) != len(other.elements) {
		return false
	}
	for i := range v.elements {
		if !v.elements[i].Equals(*other.elements[i]) {
			return false
		}
	}
	return true
}
