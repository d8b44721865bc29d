package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

func mustInstr(t *testing.T, typeName string) instructions.Instruction {
	t.Helper()
	instr, err := instructions.GlobalRegistry().Create(typeName)
	require.NoError(t, err)
	return instr
}

func newSequenceProcedure(t *testing.T) *Procedure {
	t.Helper()
	proc := New("test.xml")
	seq := mustInstr(t, instructions.SequenceType)
	seq.SetName("main")
	child := mustInstr(t, instructions.SucceedType)
	child.SetName("leaf")
	require.True(t, seq.InsertChild(child, -1))
	proc.AddInstruction(seq)
	return proc
}

func TestProcedureSetup(t *testing.T) {
	proc := newSequenceProcedure(t)
	v := workspace.NewLocalVariable()
	require.True(t, v.AddAttribute(workspace.JSONTypeAttribute, `"int32"`))
	require.NoError(t, proc.AddVariable("x", v))

	require.NoError(t, proc.Setup())
	assert.True(t, proc.IsSetup())
	assert.True(t, proc.Workspace().IsSetup())

	// Setup is idempotent
	require.NoError(t, proc.Setup())

	proc.Teardown()
	assert.False(t, proc.IsSetup())
	require.NoError(t, proc.Setup(), "procedure can be set up again after teardown")
}

func TestProcedureSetupWithoutInstructionsFails(t *testing.T) {
	proc := New("empty.xml")
	err := proc.Setup()
	assert.ErrorIs(t, err, models.ErrProcedureSetup)
}

func TestPreambleTypeRegistration(t *testing.T) {
	proc := newSequenceProcedure(t)
	proc.GetPreamble().AddTypeRegistration(TypeRegistration{
		Mode: RegistrationJSONString,
		Data: `{"name":"Point","type":{"struct":[{"name":"x","type":"float64"},{"name":"y","type":"float64"}]}}`,
	})
	require.NoError(t, proc.Setup())

	typ, ok := proc.TypeRegistry().GetType("Point")
	require.True(t, ok)
	assert.Equal(t, 2, len(typ.Members))
}

func TestSubProcedureFromCurrent(t *testing.T) {
	proc := newSequenceProcedure(t)
	require.NoError(t, proc.Setup())

	clone, ws, err := proc.SubProcedure("", "leaf")
	require.NoError(t, err)
	assert.Equal(t, instructions.SucceedType, clone.GetType())
	assert.NotSame(t, proc.RootInstruction().ChildInstructions()[0], clone)
	assert.Same(t, proc.Workspace(), ws)

	_, _, err = proc.SubProcedure("", "ghost")
	assert.Error(t, err)
}

func TestStoreCachesSubProcedures(t *testing.T) {
	loads := 0
	store := NewStore(func(filename string) (*Procedure, error) {
		loads++
		sub := New(filename)
		sub.AddInstruction(func() instructions.Instruction {
			instr, _ := instructions.GlobalRegistry().Create(instructions.SucceedType)
			return instr
		}())
		v := workspace.NewLocalVariable()
		v.AddAttribute(workspace.JSONTypeAttribute, `"int32"`)
		v.AddAttribute(workspace.JSONValueAttribute, "5")
		if err := sub.AddVariable("inner", v); err != nil {
			return nil, err
		}
		return sub, nil
	})

	first, err := store.Load("sub.xml")
	require.NoError(t, err)
	second, err := store.Load("sub.xml")
	require.NoError(t, err)
	assert.Same(t, first, second, "one cached instance per filename")
	assert.Equal(t, 1, loads)

	// the store set up the workspace on load
	v, ok := first.Workspace().GetValue("inner")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(5), i)
}

func TestStoreResetRestoresInitialValues(t *testing.T) {
	store := NewStore(func(filename string) (*Procedure, error) {
		sub := New(filename)
		instr, _ := instructions.GlobalRegistry().Create(instructions.SucceedType)
		sub.AddInstruction(instr)
		v := workspace.NewLocalVariable()
		v.AddAttribute(workspace.JSONTypeAttribute, `"int32"`)
		v.AddAttribute(workspace.JSONValueAttribute, "5")
		if err := sub.AddVariable("inner", v); err != nil {
			return nil, err
		}
		return sub, nil
	})

	sub, err := store.Load("sub.xml")
	require.NoError(t, err)
	require.True(t, sub.Workspace().SetValue("inner", anyvalue.FromInt32(99)))

	require.NoError(t, store.ResetAll())
	v, ok := sub.Workspace().GetValue("inner")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(5), i, "reset restores the initial value")

	store.TeardownAll()
	_, ok = sub.Workspace().GetValue("inner")
	assert.False(t, ok, "teardown leaves no value behind")
}

func TestStoreWithoutLoader(t *testing.T) {
	store := NewStore(nil)
	_, err := store.Load("anything.xml")
	assert.Error(t, err)
}

