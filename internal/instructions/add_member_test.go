package instructions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/input"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

func newStructWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws := workspace.New()

	target := workspace.NewLocalVariable()
	require.True(t, target.AddAttribute(workspace.JSONTypeAttribute,
		`{"struct":[{"name":"a","type":"int32"}]}`))
	require.True(t, target.AddAttribute(workspace.JSONValueAttribute, `{"a":1}`))
	require.NoError(t, ws.AddVariable("target", target))

	source := workspace.NewLocalVariable()
	require.True(t, source.AddAttribute(workspace.JSONTypeAttribute, `"int32"`))
	require.True(t, source.AddAttribute(workspace.JSONValueAttribute, "9"))
	require.NoError(t, ws.AddVariable("source", source))

	require.NoError(t, ws.Setup(nil))
	return ws
}

func TestAddMember(t *testing.T) {
	ui := newTestUI()
	ws := newStructWorkspace(t)

	a := NewAddMember()
	require.True(t, a.AddAttribute(InputVariableAttribute, "source"))
	require.True(t, a.AddAttribute(OutputVariableAttribute, "target"))
	require.True(t, a.AddAttribute(MemberNameAttribute, "b"))
	setupTree(t, a, ws)

	a.ExecuteSingle(ui, ws)
	assert.Equal(t, models.StatusSuccess, a.GetStatus())

	v, ok := ws.GetValue("target.b")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(9), i)
}

func TestAddMemberDuplicateNameFails(t *testing.T) {
	ui := newTestUI()
	ws := newStructWorkspace(t)

	a := NewAddMember()
	require.True(t, a.AddAttribute(InputVariableAttribute, "source"))
	require.True(t, a.AddAttribute(OutputVariableAttribute, "target"))
	require.True(t, a.AddAttribute(MemberNameAttribute, "a"))
	setupTree(t, a, ws)

	a.ExecuteSingle(ui, ws)
	assert.Equal(t, models.StatusFailure, a.GetStatus())
}

func TestAddMemberNonStructFails(t *testing.T) {
	ui := newTestUI()
	ws := newStructWorkspace(t)

	a := NewAddMember()
	require.True(t, a.AddAttribute(InputVariableAttribute, "target"))
	require.True(t, a.AddAttribute(OutputVariableAttribute, "source"))
	require.True(t, a.AddAttribute(MemberNameAttribute, "b"))
	setupTree(t, a, ws)

	a.ExecuteSingle(ui, ws)
	assert.Equal(t, models.StatusFailure, a.GetStatus())
}

func TestUserConfirmation(t *testing.T) {
	ws := workspace.New()

	confirm := func(choice int, ok bool) models.ExecutionStatus {
		ui := newTestUI()
		ui.inputEnabled = true
		ui.inputReply = input.NewUserChoiceReply(ok, choice)

		u := NewUserConfirmation()
		require.True(t, u.AddAttribute(DescriptionAttribute, "proceed?"))
		setupTree(t, u, ws)
		u.ExecuteSingle(ui, ws)
		return u.GetStatus()
	}

	assert.Equal(t, models.StatusSuccess, confirm(0, true))
	assert.Equal(t, models.StatusFailure, confirm(1, true))
	assert.Equal(t, models.StatusFailure, confirm(-1, false))
}

func TestUserConfirmationUnsupported(t *testing.T) {
	ui := newTestUI()
	ws := workspace.New()

	u := NewUserConfirmation()
	setupTree(t, u, ws)
	u.ExecuteSingle(ui, ws)
	assert.Equal(t, models.StatusFailure, u.GetStatus())
}

func TestWaitForVariableAvailable(t *testing.T) {
	ui := newTestUI()
	ws := newWorkspaceWithInt32(map[string]int32{"x": 1})

	w := NewWaitForVariable()
	require.True(t, w.AddAttribute(VariableNameAttribute, "x"))
	setupTree(t, w, ws)
	w.ExecuteSingle(ui, ws)
	assert.Equal(t, models.StatusSuccess, w.GetStatus())
}

func TestWaitForVariableTimesOut(t *testing.T) {
	ui := newTestUI()
	ws := workspace.New()
	v := workspace.NewLocalVariable()
	require.NoError(t, ws.AddVariable("pending", v))
	// variable registered but never set up: stays unavailable

	w := NewWaitForVariable()
	require.True(t, w.AddAttribute(VariableNameAttribute, "pending"))
	require.True(t, w.AddAttribute(TimeoutAttribute, "0.05"))
	setupTree(t, w, ws)

	start := time.Now()
	w.ExecuteSingle(ui, ws)
	assert.Equal(t, models.StatusFailure, w.GetStatus())
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitForVariableHaltAborts(t *testing.T) {
	ui := newTestUI()
	ws := workspace.New()
	v := workspace.NewLocalVariable()
	require.NoError(t, ws.AddVariable("pending", v))

	w := NewWaitForVariable()
	require.True(t, w.AddAttribute(VariableNameAttribute, "pending"))
	require.True(t, w.AddAttribute(TimeoutAttribute, "10.0"))
	setupTree(t, w, ws)

	done := make(chan struct{})
	go func() {
		w.ExecuteSingle(ui, ws)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	w.Halt()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("halt did not abort the wait")
	}
	assert.Equal(t, models.StatusFailure, w.GetStatus())
}

func TestWholeValueAssignmentMayChangeType(t *testing.T) {
	ws := newWorkspaceWithInt32(map[string]int32{"x": 1})
	replacement := anyvalue.NewStruct(
		anyvalue.StructMember{Name: "a", Value: anyvalue.FromInt32(2)})
	require.True(t, ws.SetValue("x", replacement))

	v, ok := ws.GetValue("x.a")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(2), i)
}
