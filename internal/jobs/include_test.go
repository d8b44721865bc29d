package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/parser"
)

func TestIncludeExecutesSubProcedure(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub.xml"), []byte(`
<Procedure>
  <Workspace>
    <Local name="counter" type='"int32"' value="0"/>
  </Workspace>
  <Sequence name="bump">
    <Increment varName="counter"/>
    <Increment varName="counter"/>
  </Sequence>
</Procedure>`), 0644))

	mainFile := filepath.Join(dir, "main.xml")
	require.NoError(t, os.WriteFile(mainFile, []byte(`
<Procedure>
  <Sequence>
    <Include file="sub.xml" path="bump"/>
    <Succeed/>
  </Sequence>
</Procedure>`), 0644))

	proc, err := parser.ParseFile(mainFile)
	require.NoError(t, err)

	ui := newRecordingJobInterface()
	async, err := NewAsyncRunner(proc, ui, ui, arbor.NewLogger())
	require.NoError(t, err)
	defer async.Close()

	async.Start()
	assert.Equal(t, models.JobStateSucceeded, ui.monitor.WaitForFinished())

	// the included tree ran against the sub-procedure's workspace
	_, subWs, err := proc.SubProcedure("sub.xml", "bump")
	require.NoError(t, err)
	v, ok := subWs.GetValue("counter")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(2), i)
}

func TestIncludeUnknownPathFailsJob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub.xml"), []byte(`
<Procedure>
  <Succeed name="only"/>
</Procedure>`), 0644))

	mainFile := filepath.Join(dir, "main.xml")
	require.NoError(t, os.WriteFile(mainFile, []byte(`
<Procedure>
  <Include file="sub.xml" path="ghost"/>
</Procedure>`), 0644))

	proc, err := parser.ParseFile(mainFile)
	require.NoError(t, err)

	ui := newRecordingJobInterface()
	async, err := NewAsyncRunner(proc, ui, ui, arbor.NewLogger())
	require.NoError(t, err)
	defer async.Close()

	async.Start()
	assert.Equal(t, models.JobStateFailed, ui.monitor.WaitForFinished())
}
