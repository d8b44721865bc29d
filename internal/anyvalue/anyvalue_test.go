package anyvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroValues(t *testing.T) {
	v := Zero(Int32Type)
	i, err := v.AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(0), i)

	s := Zero(StructType(
		Member{Name: "enabled", Type: BoolType},
		Member{Name: "count", Type: UInt32Type},
	))
	assert.Equal(t, 2, s.NumElements())
	field, err := s.Field("enabled")
	require.NoError(t, err)
	b, err := field.AsBool()
	require.NoError(t, err)
	assert.False(t, b)
}

func TestFieldPathAccess(t *testing.T) {
	inner := NewStruct(
		StructMember{Name: "x", Value: FromInt32(5)},
	)
	outer := NewStruct(
		StructMember{Name: "nested", Value: inner},
		StructMember{Name: "label", Value: FromString("probe")},
	)

	got, err := outer.Field("nested.x")
	require.NoError(t, err)
	i, err := got.AsInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(5), i)

	_, err = outer.Field("nested.missing")
	assert.ErrorIs(t, err, ErrNoSuchField)

	require.NoError(t, outer.SetField("nested.x", FromInt32(42)))
	got, err = outer.Field("nested.x")
	require.NoError(t, err)
	i, _ = got.AsInt64()
	assert.Equal(t, int64(42), i)
}

func TestFieldReturnsCopy(t *testing.T) {
	outer := NewStruct(StructMember{Name: "x", Value: FromInt32(1)})
	got, err := outer.Field("x")
	require.NoError(t, err)
	require.NoError(t, got.Assign(FromInt32(99)))

	unchanged, err := outer.Field("x")
	require.NoError(t, err)
	i, _ := unchanged.AsInt64()
	assert.Equal(t, int64(1), i)
}

func TestSetFieldTypeChecked(t *testing.T) {
	outer := NewStruct(StructMember{Name: "x", Value: FromInt32(1)})
	err := outer.SetField("x", FromString("not a number"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestScalarConversion(t *testing.T) {
	v := FromInt64(Int64Type, 300)

	_, err := v.ConvertTo(Int8Type)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	converted, err := v.ConvertTo(UInt16Type)
	require.NoError(t, err)
	u, err := converted.AsUInt64()
	require.NoError(t, err)
	assert.Equal(t, uint64(300), u)

	f, err := v.ConvertTo(Float64Type)
	require.NoError(t, err)
	fv, _ := f.AsFloat64()
	assert.Equal(t, 300.0, fv)
}

func TestEquals(t *testing.T) {
	a := NewStruct(StructMember{Name: "x", Value: FromInt32(7)})
	b := NewStruct(StructMember{Name: "x", Value: FromInt32(7)})
	c := NewStruct(StructMember{Name: "x", Value: FromInt32(8)})

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(FromInt32(7)))
}

func TestTypeJSONRoundTrip(t *testing.T) {
	typ := StructType(
		Member{Name: "value", Type: Float64Type},
		Member{Name: "tags", Type: ArrayType(StringType)},
	)
	parsed, err := ParseTypeJSON(nil, TypeToJSON(typ))
	require.NoError(t, err)
	assert.True(t, typ.Equals(parsed))
}

func TestParseValueJSON(t *testing.T) {
	typ := StructType(
		Member{Name: "count", Type: Int32Type},
		Member{Name: "name", Type: StringType},
	)
	v, err := ParseValueJSON(typ, `{"count":12,"name":"pump"}`)
	require.NoError(t, err)

	count, err := v.Field("count")
	require.NoError(t, err)
	i, _ := count.AsInt64()
	assert.Equal(t, int64(12), i)
	assert.Equal(t, `{"count":12,"name":"pump"}`, ValueToJSON(v))
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name    string
		typ     AnyType
		input   string
		wantErr bool
		check   func(t *testing.T, v AnyValue)
	}{
		{"bool yes", BoolType, "Yes", false, func(t *testing.T, v AnyValue) {
			b, _ := v.AsBool()
			assert.True(t, b)
		}},
		{"bool off", BoolType, "off", false, func(t *testing.T, v AnyValue) {
			b, _ := v.AsBool()
			assert.False(t, b)
		}},
		{"bool invalid", BoolType, "maybe", true, nil},
		{"int", Int32Type, "17", false, func(t *testing.T, v AnyValue) {
			i, _ := v.AsInt64()
			assert.Equal(t, int64(17), i)
		}},
		{"float", Float64Type, "2.5", false, func(t *testing.T, v AnyValue) {
			f, _ := v.AsFloat64()
			assert.Equal(t, 2.5, f)
		}},
		{"string verbatim", StringType, "  keep spaces ", false, func(t *testing.T, v AnyValue) {
			s, _ := v.AsString()
			assert.Equal(t, "  keep spaces ", s)
		}},
		{"int garbage", Int32Type, "twelve", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseLiteral(tt.typ, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, v)
		})
	}
}

func TestTypeRegistry(t *testing.T) {
	reg := NewTypeRegistry()
	typ := StructType(Member{Name: "setpoint", Type: Float64Type})
	require.NoError(t, reg.RegisterType("ControlTarget", typ))
	assert.Error(t, reg.RegisterType("ControlTarget", typ))

	resolved, ok := reg.GetType("ControlTarget")
	require.True(t, ok)
	assert.True(t, typ.Equals(resolved))

	parsed, err := ParseTypeJSON(reg, `"ControlTarget"`)
	require.NoError(t, err)
	assert.True(t, typ.Equals(parsed))
}

func TestRegisterJSONType(t *testing.T) {
	reg := NewTypeRegistry()
	err := reg.RegisterJSONType(`{"name":"Pair","type":{"struct":[{"name":"a","type":"int32"},{"name":"b","type":"int32"}]}}`)
	require.NoError(t, err)
	typ, ok := reg.GetType("Pair")
	require.True(t, ok)
	assert.Equal(t, 2, len(typ.Members))
}

func TestCompare(t *testing.T) {
	lt, err := Compare(FromInt32(3), FromFloat64(Float64Type, 3.5))
	require.NoError(t, err)
	assert.Equal(t, -1, lt)

	eq, err := Compare(FromString("a"), FromString("a"))
	require.NoError(t, err)
	assert.Equal(t, 0, eq)

	_, err = Compare(FromString("a"), FromInt32(1))
	assert.Error(t, err)
}
