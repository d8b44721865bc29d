package anyvalue

import "fmt"

// TypeCode identifies the basic kind of an AnyType.
type TypeCode int

const (
	TypeEmpty TypeCode = iota
	TypeBool
	TypeInt8
	TypeUInt8
	TypeInt16
	TypeUInt16
	TypeInt32
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeStruct
	TypeArray
)

// String returns the JSON type name for the code
func (t TypeCode) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypeBool:
		return "bool"
	case TypeInt8:
		return "int8"
	case TypeUInt8:
		return "uint8"
	case TypeInt16:
		return "int16"
	case TypeUInt16:
		return "uint16"
	case TypeInt32:
		return "int32"
	case TypeUInt32:
		return "uint32"
	case TypeInt64:
		return "int64"
	case TypeUInt64:
		return "uint64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeStruct:
		return "struct"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// IsScalar reports whether the code denotes a scalar kind
func (t TypeCode) IsScalar() bool {
	return t >= TypeBool && t <= TypeString
}

// IsInteger reports whether the code denotes an integer kind
func (t TypeCode) IsInteger() bool {
	return t >= TypeInt8 && t <= TypeUInt64
}

// IsSigned reports whether the code denotes a signed integer kind
func (t TypeCode) IsSigned() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// IsFloat reports whether the code denotes a floating point kind
func (t TypeCode) IsFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// TypeCodeFromName resolves a JSON type name to its code. The second return
// value is false for unknown names (including struct/array aliases, which
// cannot be expressed by name alone).
func TypeCodeFromName(name string) (TypeCode, bool) {
	for c := TypeEmpty; c <= TypeString; c++ {
		if c.String() == name {
			return c, true
		}
	}
	return TypeEmpty, false
}

// Member is a named field of a struct type. Order matters.
type Member struct {
	Name string
	Type AnyType
}

// AnyType is a self-describing value type: a scalar code, a struct with
// ordered members or an array with an element type.
type AnyType struct {
	Code TypeCode
	// Name is an optional registered alias (struct types only).
	Name string
	// Members holds the ordered fields of a struct type.
	Members []Member
	// Element is the element type of an array type.
	Element *AnyType
}

// Scalar type singletons.
var (
	EmptyType   = AnyType{Code: TypeEmpty}
	BoolType    = AnyType{Code: TypeBool}
	Int8Type    = AnyType{Code: TypeInt8}
	UInt8Type   = AnyType{Code: TypeUInt8}
	Int16Type   = AnyType{Code: TypeInt16}
	UInt16Type  = AnyType{Code: TypeUInt16}
	Int32Type   = AnyType{Code: TypeInt32}
	UInt32Type  = AnyType{Code: TypeUInt32}
	Int64Type   = AnyType{Code: TypeInt64}
	UInt64Type  = AnyType{Code: TypeUInt64}
	Float32Type = AnyType{Code: TypeFloat32}
	Float64Type = AnyType{Code: TypeFloat64}
	StringType  = AnyType{Code: TypeString}
)

// StructType builds a struct type from ordered members
func StructType(members ...Member) AnyType {
	return AnyType{Code: TypeStruct, Members: members}
}

// ArrayType builds an array type with the given element type
func ArrayType(element AnyType) AnyType {
	e := element
	return AnyType{Code: TypeArray, Element: &e}
}

// IsEmpty reports whether the type is the empty type
func (t AnyType) IsEmpty() bool {
	return t.Code == TypeEmpty
}

// HasMember reports whether a struct type declares the named member
func (t AnyType) HasMember(name string) bool {
	_, ok := t.MemberType(name)
	return ok
}

// MemberType returns the type of the named struct member
func (t AnyType) MemberType(name string) (AnyType, bool) {
	if t.Code != TypeStruct {
		return EmptyType, false
	}
	for _, m := range t.Members {
		if m.Name == name {
			return m.Type, true
		}
	}
	return EmptyType, false
}

// Equals reports deep equality of two types. Registered names are ignored:
// structurally identical types compare equal.
func (t AnyType) Equals(other AnyType) bool {
	if t.Code != other.Code {
		return false
	}
	switch t.Code {
	case TypeStruct:
		if len(t.Members) != len(other.Members) {
			return false
		}
		for i, m := range t.Members {
			if m.Name != other.Members[i].Name || !m.Type.Equals(other.Members[i].Type) {
				return false
			}
		}
		return true
	case TypeArray:
		if t.Element == nil || other.Element == nil {
			return t.Element == other.Element
		}
		return t.Element.Equals(*other.Element)
	default:
		return true
	}
}

// String renders a compact human readable representation, used in error
// messages and failed constraint reports.
func (t AnyType) String() string {
	switch t.Code {
	case TypeStruct:
		if t.Name != "" {
			return t.Name
		}
		s := "struct{"
		for i, m := range t.Members {
			if i > 0 {
				s += ","
			}
			s += m.Name + ":" + m.Type.String()
		}
		return s + "}"
	case TypeArray:
		if t.Element == nil {
			return "array[empty]"
		}
		return fmt.Sprintf("array[%s]", t.Element.String())
	default:
		return t.Code.String()
	}
}
