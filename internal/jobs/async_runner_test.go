package jobs

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/input"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/parser"
	"github.com/ternarybob/oactree/internal/procedure"
)

// recordingJobInterface implements JobInterface for tests: it records
// everything and supports waiting for job states.
type recordingJobInterface struct {
	monitor *SimpleJobStateMonitor

	mu        sync.Mutex
	states    []models.JobState
	putValues []anyvalue.AnyValue
	logs      []string
	messages  []string
}

func newRecordingJobInterface() *recordingJobInterface {
	return &recordingJobInterface{monitor: NewSimpleJobStateMonitor()}
}

func (r *recordingJobInterface) UpdateInstructionStatus(instr interfaces.InstructionRef) {}

func (r *recordingJobInterface) VariableUpdated(name string, value anyvalue.AnyValue, connected bool) {
}

func (r *recordingJobInterface) PutValue(value anyvalue.AnyValue, description string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putValues = append(r.putValues, value)
	return true
}

func (r *recordingJobInterface) RequestUserInput(request input.Request) input.Future {
	return input.UnsupportedFuture{}
}

func (r *recordingJobInterface) Message(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
}

func (r *recordingJobInterface) Log(severity models.LogSeverity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, fmt.Sprintf("%s: %s", severity, message))
}

func (r *recordingJobInterface) OnStateChange(state models.JobState) {
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()
	r.monitor.OnStateChange(state)
}

func (r *recordingJobInterface) OnBreakpointChange(instr interfaces.InstructionRef, set bool) {}

func (r *recordingJobInterface) OnProcedureTick() {}

func (r *recordingJobInterface) stateList() []models.JobState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.JobState, len(r.states))
	copy(out, r.states)
	return out
}

func parseProcedure(t *testing.T, content string) *procedure.Procedure {
	t.Helper()
	proc, err := parser.ParseString(content)
	require.NoError(t, err)
	return proc
}

func newRunnerForTest(t *testing.T, content string) (*AsyncRunner, *recordingJobInterface, *procedure.Procedure) {
	t.Helper()
	proc := parseProcedure(t, content)
	ui := newRecordingJobInterface()
	async, err := NewAsyncRunner(proc, ui, ui, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(async.Close)
	return async, ui, proc
}

func TestScenarioASequenceSucceeds(t *testing.T) {
	async, ui, proc := newRunnerForTest(t, `
<Procedure>
  <Sequence>
    <Succeed/>
    <Succeed/>
  </Sequence>
</Procedure>`)

	async.Start()
	assert.Equal(t, models.JobStateSucceeded, ui.monitor.WaitForFinished())

	root := proc.RootInstruction()
	for _, child := range root.ChildInstructions() {
		assert.Equal(t, models.StatusSuccess, child.GetStatus())
	}
	assert.Contains(t, ui.stateList(), models.JobStateRunning)
	assert.Empty(t, ui.putValues)
}

func TestScenarioBSequenceFailsMidway(t *testing.T) {
	async, ui, proc := newRunnerForTest(t, `
<Procedure>
  <Sequence>
    <Succeed/>
    <Fail/>
    <Succeed/>
  </Sequence>
</Procedure>`)

	async.Start()
	assert.Equal(t, models.JobStateFailed, ui.monitor.WaitForFinished())

	children := proc.RootInstruction().ChildInstructions()
	assert.Equal(t, models.StatusSuccess, children[0].GetStatus())
	assert.Equal(t, models.StatusFailure, children[1].GetStatus())
	assert.Equal(t, models.StatusNotStarted, children[2].GetStatus())
}

func TestScenarioCInverter(t *testing.T) {
	async, ui, proc := newRunnerForTest(t, `
<Procedure>
  <Inverter>
    <Fail/>
  </Inverter>
</Procedure>`)

	async.Start()
	assert.Equal(t, models.JobStateSucceeded, ui.monitor.WaitForFinished())
	root := proc.RootInstruction()
	assert.Equal(t, models.StatusSuccess, root.GetStatus())
	assert.Equal(t, models.StatusFailure, root.ChildInstructions()[0].GetStatus())
}

func TestScenarioDCopyAndOutput(t *testing.T) {
	async, ui, proc := newRunnerForTest(t, `
<Procedure>
  <Workspace>
    <Local name="x" type='"int32"' value="7"/>
    <Local name="y" type='"int32"' value="0"/>
  </Workspace>
  <Sequence>
    <Copy inputVar="x" outputVar="y"/>
    <Output fromVar="y"/>
  </Sequence>
</Procedure>`)

	async.Start()
	assert.Equal(t, models.JobStateSucceeded, ui.monitor.WaitForFinished())

	v, ok := proc.Workspace().GetValue("y")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(7), i)

	require.Len(t, ui.putValues, 1)
	i, _ = ui.putValues[0].AsInt64()
	assert.Equal(t, int64(7), i)
}

func TestScenarioEHaltDuringAsyncWait(t *testing.T) {
	async, ui, proc := newRunnerForTest(t, `
<Procedure>
  <Sequence>
    <AsyncWait timeout="10.0"/>
    <Succeed/>
  </Sequence>
</Procedure>`)

	async.Start()
	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	async.Halt()

	assert.Equal(t, models.JobStateHalted, ui.monitor.WaitForFinished())
	assert.Less(t, time.Since(start), time.Second)

	children := proc.RootInstruction().ChildInstructions()
	assert.Equal(t, models.StatusFailure, children[0].GetStatus())
	assert.Equal(t, models.StatusNotStarted, children[1].GetStatus())
}

func TestScenarioFListen(t *testing.T) {
	async, ui, proc := newRunnerForTest(t, `
<Procedure>
  <Workspace>
    <Local name="v" type='"int32"' value="0"/>
    <Local name="w" type='"int32"' value="0"/>
  </Workspace>
  <Listen varNames="v">
    <Copy inputVar="v" outputVar="w"/>
  </Listen>
</Procedure>`)

	async.Start()
	time.Sleep(50 * time.Millisecond)
	proc.Workspace().SetValue("v", anyvalue.FromInt32(1))
	time.Sleep(50 * time.Millisecond)
	async.Halt()

	assert.Equal(t, models.JobStateHalted, ui.monitor.WaitForFinished())
	v, ok := proc.Workspace().GetValue("w")
	require.True(t, ok)
	i, _ := v.AsInt64()
	assert.Equal(t, int64(1), i)
}

func TestPauseAndResume(t *testing.T) {
	// an endless repeat of short waits keeps the job busy without blocking
	async, ui, _ := newRunnerForTest(t, `
<Procedure>
  <Repeat maxCount="-1">
    <Wait timeout="0.01"/>
  </Repeat>
</Procedure>`)

	async.Start()
	require.True(t, ui.monitor.WaitForState(models.JobStateRunning, time.Second))

	async.Pause()
	require.True(t, ui.monitor.WaitForState(models.JobStatePaused, 2*time.Second))

	async.Start()
	require.True(t, ui.monitor.WaitForState(models.JobStateRunning, 2*time.Second))

	async.Halt()
	assert.Equal(t, models.JobStateHalted, ui.monitor.WaitForFinished())
}

func TestStepFromInitial(t *testing.T) {
	async, ui, proc := newRunnerForTest(t, `
<Procedure>
  <Sequence>
    <Succeed/>
    <Succeed/>
  </Sequence>
</Procedure>`)

	async.Step()
	require.True(t, ui.monitor.WaitForState(models.JobStatePaused, 2*time.Second))
	children := proc.RootInstruction().ChildInstructions()
	assert.Equal(t, models.StatusSuccess, children[0].GetStatus())
	assert.Equal(t, models.StatusNotStarted, children[1].GetStatus())

	// stepping to completion reaches Succeeded
	async.Step()
	assert.Equal(t, models.JobStateSucceeded, ui.monitor.WaitForFinished())
}

func TestResetFromFinished(t *testing.T) {
	async, ui, proc := newRunnerForTest(t, `
<Procedure>
  <Sequence>
    <Fail/>
  </Sequence>
</Procedure>`)

	async.Start()
	require.Equal(t, models.JobStateFailed, ui.monitor.WaitForFinished())

	async.Reset()
	require.True(t, ui.monitor.WaitForState(models.JobStateInitial, 2*time.Second))
	assert.Equal(t, models.StatusNotStarted, proc.RootInstruction().GetStatus())

	// the job can run again after Reset
	async.Start()
	assert.Equal(t, models.JobStateFailed, ui.monitor.WaitForFinished())
}

func TestInvalidCommandsIgnored(t *testing.T) {
	async, ui, _ := newRunnerForTest(t, `
<Procedure>
  <Succeed/>
</Procedure>`)

	// Pause and Reset are no-ops in Initial
	async.Pause()
	async.Reset()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, models.JobStateInitial, async.GetState())

	async.Start()
	assert.Equal(t, models.JobStateSucceeded, ui.monitor.WaitForFinished())
	assert.Equal(t, []models.JobState{models.JobStateInitial, models.JobStateRunning,
		models.JobStateSucceeded}, ui.stateList())
}

func TestHaltFromInitial(t *testing.T) {
	async, ui, _ := newRunnerForTest(t, `
<Procedure>
  <Succeed/>
</Procedure>`)

	async.Halt()
	assert.Equal(t, models.JobStateHalted, ui.monitor.WaitForFinished())
}

func TestCloseWithoutStart(t *testing.T) {
	proc := parseProcedure(t, `<Procedure><Succeed/></Procedure>`)
	ui := newRecordingJobInterface()
	async, err := NewAsyncRunner(proc, ui, ui, arbor.NewLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		async.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close without Start did not terminate the worker")
	}
}

func TestSetupFailureSurfacesFromConstructor(t *testing.T) {
	proc := parseProcedure(t, `<Procedure><Sequence/></Procedure>`)
	ui := newRecordingJobInterface()
	_, err := NewAsyncRunner(proc, ui, ui, arbor.NewLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrProcedureSetup)
}

func TestCommandQueue(t *testing.T) {
	q := NewCommandQueue()
	assert.True(t, q.IsEmpty())

	q.Push(models.CommandStart)
	q.Push(models.CommandPause)
	assert.Equal(t, 2, q.Size())

	// Halt outranks the queued Start and jumps the queue
	ran := false
	require.True(t, q.PriorityPush(models.CommandHalt, func() { ran = true }))
	assert.True(t, ran)

	cmd, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, models.CommandHalt, cmd)

	// a second Halt does not outrank the front Halt
	q.Push(models.CommandHalt)
	assert.False(t, q.PriorityPush(models.CommandHalt, func() { t.Fatal("must not run") }))
}

func TestCommandQueueWaitForNext(t *testing.T) {
	q := NewCommandQueue()
	got := make(chan models.JobCommand, 1)
	go func() { got <- q.WaitForNext() }()

	time.Sleep(20 * time.Millisecond)
	q.Push(models.CommandStep)

	select {
	case cmd := <-got:
		assert.Equal(t, models.CommandStep, cmd)
	case <-time.After(time.Second):
		t.Fatal("WaitForNext did not wake")
	}
}
