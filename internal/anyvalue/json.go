package anyvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Type encoding: scalar types are their name as a JSON string; struct types
// are {"struct":[{"name":...,"type":...},...]} (an array, to preserve member
// order); array types are {"array":<element type>}. A registered alias can
// be referenced by name like a scalar.

// ParseTypeJSON parses a JSON type description, resolving registered names
// through reg (which may be nil).
func ParseTypeJSON(reg *TypeRegistry, data string) (AnyType, error) {
	var raw any
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return EmptyType, fmt.Errorf("invalid type JSON: %w", err)
	}
	return typeFromRaw(reg, raw)
}

func typeFromRaw(reg *TypeRegistry, raw any) (AnyType, error) {
	switch r := raw.(type) {
	case string:
		if code, ok := TypeCodeFromName(r); ok {
			return AnyType{Code: code}, nil
		}
		if reg != nil {
			if t, ok := reg.GetType(r); ok {
				return t, nil
			}
		}
		return EmptyType, fmt.Errorf("unknown type name %q", r)
	case map[string]any:
		if members, ok := r["struct"]; ok {
			list, ok := members.([]any)
			if !ok {
				return EmptyType, fmt.Errorf("struct members must be an array")
			}
			t := AnyType{Code: TypeStruct}
			for _, entry := range list {
				m, ok := entry.(map[string]any)
				if !ok {
					return EmptyType, fmt.Errorf("struct member must be an object")
				}
				name, _ := m["name"].(string)
				if name == "" {
					return EmptyType, fmt.Errorf("struct member without name")
				}
				mt, err := typeFromRaw(reg, m["type"])
				if err != nil {
					return EmptyType, err
				}
				t.Members = append(t.Members, Member{Name: name, Type: mt})
			}
			return t, nil
		}
		if element, ok := r["array"]; ok {
			et, err := typeFromRaw(reg, element)
			if err != nil {
				return EmptyType, err
			}
			return ArrayType(et), nil
		}
		return EmptyType, fmt.Errorf("type object needs a struct or array key")
	}
	return EmptyType, fmt.Errorf("unsupported type JSON node")
}

// TypeToJSON serialises a type to its JSON description
func TypeToJSON(t AnyType) string {
	var buf bytes.Buffer
	writeTypeJSON(&buf, t)
	return buf.String()
}

func writeTypeJSON(buf *bytes.Buffer, t AnyType) {
	switch t.Code {
	case TypeStruct:
		buf.WriteString(`{"struct":[`)
		for i, m := range t.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(buf, `{"name":%q,"type":`, m.Name)
			writeTypeJSON(buf, m.Type)
			buf.WriteString("}")
		}
		buf.WriteString("]}")
	case TypeArray:
		buf.WriteString(`{"array":`)
		if t.Element != nil {
			writeTypeJSON(buf, *t.Element)
		} else {
			buf.WriteString(`"empty"`)
		}
		buf.WriteString("}")
	default:
		fmt.Fprintf(buf, "%q", t.Code.String())
	}
}

// ParseValueJSON parses a JSON value against a known type
func ParseValueJSON(t AnyType, data string) (AnyValue, error) {
	var raw any
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Empty(), fmt.Errorf("invalid value JSON: %w", err)
	}
	return valueFromRaw(t, raw)
}

func valueFromRaw(t AnyType, raw any) (AnyValue, error) {
	switch t.Code {
	case TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return Empty(), fmt.Errorf("%w: expected bool", ErrTypeMismatch)
		}
		return FromBool(b), nil
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return Empty(), fmt.Errorf("%w: expected string", ErrTypeMismatch)
		}
		return FromString(s), nil
	case TypeFloat32, TypeFloat64:
		n, ok := raw.(json.Number)
		if !ok {
			return Empty(), fmt.Errorf("%w: expected number", ErrTypeMismatch)
		}
		f, err := n.Float64()
		if err != nil {
			return Empty(), err
		}
		return FromFloat64(t, f), nil
	case TypeStruct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Empty(), fmt.Errorf("%w: expected object", ErrTypeMismatch)
		}
		v := Zero(t)
		for i, m := range t.Members {
			field, present := obj[m.Name]
			if !present {
				continue
			}
			mv, err := valueFromRaw(m.Type, field)
			if err != nil {
				return Empty(), fmt.Errorf("member %q: %w", m.Name, err)
			}
			v.elements[i] = &mv
		}
		return v, nil
	case TypeArray:
		list, ok := raw.([]any)
		if !ok {
			return Empty(), fmt.Errorf("%w: expected array", ErrTypeMismatch)
		}
		if t.Element == nil {
			return Empty(), fmt.Errorf("array type without element type")
		}
		v := Zero(t)
		for i, entry := range list {
			ev, err := valueFromRaw(*t.Element, entry)
			if err != nil {
				return Empty(), fmt.Errorf("element %d: %w", i, err)
			}
			if err := v.Append(ev); err != nil {
				return Empty(), err
			}
		}
		return v, nil
	default:
		if t.Code.IsInteger() {
			n, ok := raw.(json.Number)
			if !ok {
				return Empty(), fmt.Errorf("%w: expected number", ErrTypeMismatch)
			}
			if t.Code.IsSigned() {
				i, err := n.Int64()
				if err != nil {
					return Empty(), err
				}
				return convertScalar(FromInt64(Int64Type, i), t)
			}
			u, err := n.Int64()
			if err != nil {
				return Empty(), err
			}
			if u < 0 {
				return Empty(), fmt.Errorf("%w: negative value for %s", ErrTypeMismatch, t.String())
			}
			return convertScalar(FromUInt64(UInt64Type, uint64(u)), t)
		}
		return Empty(), fmt.Errorf("cannot parse value of type %s", t.String())
	}
}

// ValueToJSON serialises a value to JSON. Struct members keep declared order.
func ValueToJSON(v AnyValue) string {
	var buf bytes.Buffer
	writeValueJSON(&buf, v)
	return buf.String()
}

func writeValueJSON(buf *bytes.Buffer, v AnyValue) {
	switch v.typ.Code {
	case TypeEmpty:
		buf.WriteString("null")
	case TypeBool:
		fmt.Fprintf(buf, "%v", v.scalar)
	case TypeString:
		fmt.Fprintf(buf, "%q", v.scalar)
	case TypeFloat32, TypeFloat64:
		b, _ := json.Marshal(v.scalar)
		buf.Write(b)
	case TypeStruct:
		buf.WriteByte('{')
		for i, m := range v.typ.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(buf, "%q:", m.Name)
			writeValueJSON(buf, *v.elements[i])
		}
		buf.WriteByte('}')
	case TypeArray:
		buf.WriteByte('[')
		for i, e := range v.elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValueJSON(buf, *e)
		}
		buf.WriteByte(']')
	default:
		fmt.Fprintf(buf, "%v", v.scalar)
	}
}

func unmarshalUseNumber(data string, out any) error {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

// ParseLiteral parses a plain attribute string against a declared type.
// Booleans accept true/yes/on and false/no/off case-insensitively, strings
// are taken verbatim, everything else parses as JSON.
func ParseLiteral(t AnyType, s string) (AnyValue, error) {
	switch t.Code {
	case TypeString:
		return FromString(s), nil
	case TypeBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "on":
			return FromBool(true), nil
		case "false", "no", "off":
			return FromBool(false), nil
		}
		return Empty(), fmt.Errorf("%w: %q is not a boolean", ErrTypeMismatch, s)
	default:
		return ParseValueJSON(t, strings.TrimSpace(s))
	}
}
