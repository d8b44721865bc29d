package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/models"
)

const simpleProcedure = `
<Procedure>
  <Workspace>
    <Local name="x" type='"int32"' value="7"/>
    <Local name="y" type='"int32"' value="0"/>
  </Workspace>
  <Sequence name="main">
    <Copy inputVar="x" outputVar="y"/>
    <Output fromVar="y" description="result"/>
  </Sequence>
</Procedure>`

func TestParseString(t *testing.T) {
	proc, err := ParseString(simpleProcedure)
	require.NoError(t, err)

	root := proc.RootInstruction()
	require.NotNil(t, root)
	assert.Equal(t, instructions.SequenceType, root.GetType())
	assert.Equal(t, "main", root.GetName())
	require.Len(t, root.ChildInstructions(), 2)
	assert.Equal(t, instructions.CopyType, root.ChildInstructions()[0].GetType())
	assert.Equal(t, "x", root.ChildInstructions()[0].GetAttribute(instructions.InputVariableAttribute))

	assert.Equal(t, []string{"x", "y"}, proc.Workspace().VariableNames())
	require.NoError(t, proc.Setup())

	v, ok := proc.Workspace().GetValue("x")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(7), i)
}

func TestParsePreamble(t *testing.T) {
	content := `
<Procedure>
  <RegisterType jsontype='{"name":"Pair","type":{"struct":[{"name":"a","type":"int32"},{"name":"b","type":"int32"}]}}'/>
  <Plugin>libfakeplugin.so</Plugin>
  <Workspace>
    <Local name="p" type='"Pair"'/>
  </Workspace>
  <Succeed/>
</Procedure>`
	proc, err := ParseString(content)
	require.NoError(t, err)
	assert.Len(t, proc.GetPreamble().TypeRegistrations(), 1)
	assert.Equal(t, []string{"libfakeplugin.so"}, proc.GetPreamble().PluginPaths())

	require.NoError(t, proc.Setup())
	v, ok := proc.Workspace().GetValue("p.a")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(0), i)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not xml", "this is not xml"},
		{"wrong root", "<Sequence/>"},
		{"unknown instruction", "<Procedure><Teleport/></Procedure>"},
		{"unknown variable type", "<Procedure><Workspace><Quantum name='q'/></Workspace></Procedure>"},
		{"variable without name", `<Procedure><Workspace><Local type='"int32"'/></Workspace></Procedure>`},
		{"child on action", "<Procedure><Succeed><Fail/></Succeed></Procedure>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrParse)
		})
	}
}

func TestParseFileAndInclude(t *testing.T) {
	dir := t.TempDir()

	subFile := filepath.Join(dir, "sub.xml")
	require.NoError(t, os.WriteFile(subFile, []byte(`
<Procedure>
  <Workspace>
    <Local name="inner" type='"int32"' value="1"/>
  </Workspace>
  <Sequence name="subroot">
    <Succeed/>
  </Sequence>
</Procedure>`), 0644))

	mainFile := filepath.Join(dir, "main.xml")
	require.NoError(t, os.WriteFile(mainFile, []byte(`
<Procedure>
  <Sequence>
    <Include file="sub.xml" path="subroot"/>
  </Sequence>
</Procedure>`), 0644))

	proc, err := ParseFile(mainFile)
	require.NoError(t, err)
	require.NoError(t, proc.Setup())

	clone, ws, err := proc.SubProcedure("sub.xml", "subroot")
	require.NoError(t, err)
	assert.Equal(t, instructions.SequenceType, clone.GetType())
	v, ok := ws.GetValue("inner")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(1), i)
}

func TestDuplicateVariableNames(t *testing.T) {
	content := `
<Procedure>
  <Workspace>
    <Local name="x" type='"int32"' value="1"/>
    <Local name="x" type='"int32"' value="2"/>
  </Workspace>
  <Succeed/>
</Procedure>`
	_, err := ParseString(content)
	assert.ErrorIs(t, err, models.ErrParse)
}
