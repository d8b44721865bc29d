package instructions

import (
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/input"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// testUI records everything instructions publish.
type testUI struct {
	mu           sync.Mutex
	transitions  []string
	putValues    []anyvalue.AnyValue
	refusePut    bool
	messages     []string
	logs         []string
	inputEnabled bool
	inputReply   input.Reply
}

func newTestUI() *testUI {
	return &testUI{}
}

func (u *testUI) UpdateInstructionStatus(instr interfaces.InstructionRef) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.transitions = append(u.transitions,
		fmt.Sprintf("%s:%s", instr.GetType(), instr.GetStatus()))
}

func (u *testUI) VariableUpdated(name string, value anyvalue.AnyValue, connected bool) {}

func (u *testUI) PutValue(value anyvalue.AnyValue, description string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.refusePut {
		return false
	}
	u.putValues = append(u.putValues, value)
	return true
}

func (u *testUI) RequestUserInput(request input.Request) input.Future {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.inputEnabled {
		return input.UnsupportedFuture{}
	}
	return &readyFuture{reply: u.inputReply}
}

func (u *testUI) Message(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.messages = append(u.messages, text)
}

func (u *testUI) Log(severity models.LogSeverity, message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.logs = append(u.logs, fmt.Sprintf("%s: %s", severity, message))
}

func (u *testUI) transitionList() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, len(u.transitions))
	copy(out, u.transitions)
	return out
}

// readyFuture is an immediately ready input future.
type readyFuture struct {
	mu        sync.Mutex
	reply     input.Reply
	cancelled bool
	consumed  bool
}

func (f *readyFuture) ID() uint64 { return 1 }

func (f *readyFuture) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.cancelled
}

func (f *readyFuture) IsReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.cancelled && !f.consumed
}

func (f *readyFuture) WaitFor(timeout time.Duration) bool { return f.IsReady() }

func (f *readyFuture) GetValue() (input.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelled || f.consumed {
		return input.Reply{}, input.ErrNoReply
	}
	f.consumed = true
	return f.reply, nil
}

func (f *readyFuture) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = true
}

// testContext is a minimal SetupContext over a workspace.
type testContext struct {
	ws  *workspace.Workspace
	reg *anyvalue.TypeRegistry
}

func newTestContext(ws *workspace.Workspace) *testContext {
	return &testContext{ws: ws, reg: anyvalue.NewTypeRegistry()}
}

func (c *testContext) Workspace() *workspace.Workspace { return c.ws }

func (c *testContext) TypeRegistry() *anyvalue.TypeRegistry { return c.reg }

func (c *testContext) SubProcedure(filename, path string) (Instruction, *workspace.Workspace, error) {
	return nil, nil, fmt.Errorf("no sub-procedures in tests")
}

// newWorkspaceWithInt32 builds a set up workspace holding int32 locals.
func newWorkspaceWithInt32(values map[string]int32) *workspace.Workspace {
	ws := workspace.New()
	for name, value := range values {
		v := workspace.NewLocalVariable()
		v.AddAttribute(workspace.JSONTypeAttribute, `"int32"`)
		v.AddAttribute(workspace.JSONValueAttribute, fmt.Sprintf("%d", value))
		if err := ws.AddVariable(name, v); err != nil {
			panic(err)
		}
	}
	if err := ws.Setup(nil); err != nil {
		panic(err)
	}
	return ws
}

// tickUntilFinished drives an instruction to completion with a tick limit.
func tickUntilFinished(instr Instruction, ui interfaces.UserInterface, ws *workspace.Workspace, maxTicks int) models.ExecutionStatus {
	for i := 0; i < maxTicks; i++ {
		if instr.GetStatus().IsFinished() {
			break
		}
		instr.ExecuteSingle(ui, ws)
	}
	return instr.GetStatus()
}
