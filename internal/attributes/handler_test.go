package attributes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oactree/internal/anyvalue"
)

func TestHandlerMandatoryValidation(t *testing.T) {
	h := NewHandler()
	h.AddDefinition("timeout", anyvalue.Float64Type).SetMandatory()

	assert.False(t, h.Validate())
	assert.Contains(t, h.FailedConstraints(), "Exists(timeout)")

	require.True(t, h.AddAttribute("timeout", "2.5"))
	assert.True(t, h.Validate())
	assert.Empty(t, h.FailedConstraints())
}

func TestHandlerLiteralTypeCheck(t *testing.T) {
	h := NewHandler()
	h.AddDefinition("count", anyvalue.UInt32Type)
	require.True(t, h.AddAttribute("count", "not a number"))

	assert.False(t, h.Validate())
	require.Len(t, h.FailedConstraints(), 1)
}

func TestHandlerDuplicateAttribute(t *testing.T) {
	h := NewHandler()
	require.True(t, h.AddAttribute("name", "a"))
	assert.False(t, h.AddAttribute("name", "b"))
	assert.Equal(t, "a", h.GetAttribute("name"))

	h.SetAttribute("name", "c")
	assert.Equal(t, "c", h.GetAttribute("name"))
}

func TestVariableNameInterpretation(t *testing.T) {
	h := NewHandler()
	h.AddDefinition("outputVar", anyvalue.EmptyType).SetCategory(CategoryVariableName)
	h.AddDefinition("timeout", anyvalue.Float64Type).SetCategory(CategoryBoth)
	require.True(t, h.AddAttribute("outputVar", "target.field"))
	require.True(t, h.AddAttribute("timeout", "@delay"))

	info, err := h.GetValueInfo("outputVar")
	require.NoError(t, err)
	assert.True(t, info.IsVariableName)
	name, path := SplitFieldPath(info.Value)
	assert.Equal(t, "target", name)
	assert.Equal(t, "field", path)

	info, err = h.GetValueInfo("timeout")
	require.NoError(t, err)
	assert.True(t, info.IsVariableName)
	assert.Equal(t, "delay", info.Value)
}

func TestBothCategoryLiteral(t *testing.T) {
	h := NewHandler()
	h.AddDefinition("timeout", anyvalue.Float64Type).SetCategory(CategoryBoth)
	require.True(t, h.AddAttribute("timeout", "1.5"))

	v, err := h.GetLiteralValue("timeout")
	require.NoError(t, err)
	f, _ := v.AsFloat64()
	assert.Equal(t, 1.5, f)
}

func TestUndeclaredAttributeRead(t *testing.T) {
	h := NewHandler()
	require.True(t, h.AddAttribute("mystery", "1"))
	_, err := h.GetValueInfo("mystery")
	assert.Error(t, err)
}

func TestConstraintComposition(t *testing.T) {
	attrs := []StringAttribute{{Name: "a", Value: "1"}}

	assert.True(t, Exists("a").Validate(attrs))
	assert.False(t, Exists("b").Validate(attrs))
	assert.True(t, Not(Exists("b")).Validate(attrs))
	assert.True(t, Or(Exists("a"), Exists("b")).Validate(attrs))
	assert.False(t, And(Exists("a"), Exists("b")).Validate(attrs))
	assert.True(t, Xor(Exists("a"), Exists("b")).Validate(attrs))
	assert.False(t, Xor(Exists("a"), Exists("a")).Validate(attrs))

	assert.True(t, FixedType("a", anyvalue.Int32Type).Validate(attrs))
	assert.False(t, FixedType("a", anyvalue.BoolType).Validate(attrs))
}

func TestHandlerConstraints(t *testing.T) {
	h := NewHandler()
	h.AddDefinition("fromVar", anyvalue.EmptyType).SetCategory(CategoryVariableName)
	h.AddDefinition("value", anyvalue.Int32Type)
	h.AddConstraint(Xor(Exists("fromVar"), Exists("value")))

	require.True(t, h.AddAttribute("fromVar", "x"))
	require.True(t, h.AddAttribute("value", "3"))
	assert.False(t, h.Validate())
	assert.Contains(t, h.FailedConstraints()[0], "XOR")
}
