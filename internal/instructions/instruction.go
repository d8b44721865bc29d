package instructions

import (
	"fmt"
	"sync/atomic"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/attributes"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// NameAttribute uniquely names an instruction within its siblings.
const NameAttribute = "name"

// SetupContext is what instructions may query during Setup. The procedure
// aggregate implements it.
type SetupContext interface {
	// Workspace returns the procedure's workspace
	Workspace() *workspace.Workspace

	// TypeRegistry returns the procedure's registered value types
	TypeRegistry() *anyvalue.TypeRegistry

	// SubProcedure resolves a sub-procedure instruction tree for Include:
	// filename names the procedure file (empty for the current procedure),
	// path names the instruction (empty for the root). The returned
	// instruction is a fresh clone; the workspace is the sub-procedure's.
	SubProcedure(filename, path string) (Instruction, *workspace.Workspace, error)
}

// Instruction is one behaviour tree node. A tick is one ExecuteSingle call;
// the node updates its stored status and publishes transitions through the
// UserInterface.
type Instruction interface {
	GetType() string
	GetName() string
	SetName(name string)
	GetCategory() models.InstructionCategory
	GetStatus() models.ExecutionStatus

	AddAttribute(name, value string) bool
	SetAttribute(name, value string)
	GetAttribute(name string) string
	HasAttribute(name string) bool
	GetAttributes() []attributes.StringAttribute
	AttributeHandler() *attributes.Handler

	// Setup validates attributes and children and prepares execution state.
	// It recurses into children and fails with an InstructionSetupError.
	Setup(ctx SetupContext) error

	// ExecuteSingle performs exactly one tick
	ExecuteSingle(ui interfaces.UserInterface, ws *workspace.Workspace)

	// Halt requests cooperative termination; it recurses into children
	Halt()

	// IsHaltRequested reports whether Halt was requested since the last Reset
	IsHaltRequested() bool

	// Reset restores the node (and its children) to NotStarted
	Reset(ui interfaces.UserInterface)

	ChildInstructions() []Instruction

	// InsertChild adds a child at idx (-1 appends); false when the
	// category does not accept it
	InsertChild(child Instruction, idx int) bool

	// NextInstructions returns the leaves this node would tick next: an
	// unfinished action returns itself, compounds and decorators collect
	// the leaves of the children they would tick next
	NextInstructions() []Instruction
}

// Optional hooks concrete instructions implement besides executeSingleImpl.
type initHooker interface {
	// initHook runs once per activation before the first tick; false fails
	// the instruction immediately
	initHook(ui interfaces.UserInterface, ws *workspace.Workspace) bool
}

type setupImpler interface {
	setupImpl(ctx SetupContext) error
}

type haltImpler interface {
	haltImpl()
}

type resetHooker interface {
	resetHook(ui interfaces.UserInterface)
}

type nextInstructionsImpler interface {
	nextInstructionsImpl() []Instruction
}

type executor interface {
	executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus
}

// base carries the shared tick state machine. Concrete instructions embed
// it and implement executeSingleImpl plus any optional hooks; the tick
// worker is the only goroutine that mutates this state.
type base struct {
	self          Instruction
	instrType     string
	category      models.InstructionCategory
	attrs         *attributes.Handler
	status        models.ExecutionStatus
	haltRequested atomic.Bool
	children      []Instruction
}

func (b *base) init(self Instruction, instrType string, category models.InstructionCategory) {
	b.self = self
	b.instrType = instrType
	b.category = category
	b.attrs = attributes.NewHandler()
	b.attrs.AddDefinition(NameAttribute, anyvalue.StringType)
}

func (b *base) GetType() string { return b.instrType }

func (b *base) GetName() string { return b.attrs.GetAttribute(NameAttribute) }

func (b *base) SetName(name string) { b.attrs.SetAttribute(NameAttribute, name) }

func (b *base) GetCategory() models.InstructionCategory { return b.category }

func (b *base) GetStatus() models.ExecutionStatus { return b.status }

func (b *base) AddAttribute(name, value string) bool { return b.attrs.AddAttribute(name, value) }

func (b *base) SetAttribute(name, value string) { b.attrs.SetAttribute(name, value) }

func (b *base) GetAttribute(name string) string { return b.attrs.GetAttribute(name) }

func (b *base) HasAttribute(name string) bool { return b.attrs.HasAttribute(name) }

func (b *base) GetAttributes() []attributes.StringAttribute { return b.attrs.GetAttributes() }

func (b *base) AttributeHandler() *attributes.Handler { return b.attrs }

func (b *base) IsHaltRequested() bool { return b.haltRequested.Load() }

// addAttributeDefinition declares an attribute on the embedded handler;
// constructors chain SetMandatory/SetCategory on the result.
func (b *base) addAttributeDefinition(name string, valueType anyvalue.AnyType) *attributes.Definition {
	return b.attrs.AddDefinition(name, valueType)
}

func (b *base) addConstraint(c attributes.Constraint) {
	b.attrs.AddConstraint(c)
}

// Setup validates attributes and category/child consistency, then runs the
// concrete setup hook.
func (b *base) Setup(ctx SetupContext) error {
	b.attrs.ClearFailedConstraints()
	attrsValid := b.attrs.Validate()

	var reason string
	switch b.category {
	case models.CategoryCompound:
		if len(b.children) == 0 {
			reason = "compound instruction requires at least one child"
		}
	case models.CategoryDecorator:
		if len(b.children) != 1 {
			reason = "decorator instruction requires exactly one child"
		}
	case models.CategoryAction:
		if len(b.children) != 0 {
			reason = "action instruction cannot have children"
		}
	}
	if !attrsValid || reason != "" {
		return &models.InstructionSetupError{
			InstructionName:   b.GetName(),
			InstructionType:   b.instrType,
			FailedConstraints: b.attrs.FailedConstraints(),
			Reason:            reason,
		}
	}
	if s, ok := b.self.(setupImpler); ok {
		return s.setupImpl(ctx)
	}
	return nil
}

// ExecuteSingle performs one tick: the init hook on the first tick of an
// activation, then the concrete execute hook, publishing status changes.
func (b *base) ExecuteSingle(ui interfaces.UserInterface, ws *workspace.Workspace) {
	if b.status.IsFinished() {
		return
	}
	if b.status == models.StatusNotStarted {
		if ih, ok := b.self.(initHooker); ok {
			if !ih.initHook(ui, ws) {
				b.setStatus(ui, models.StatusFailure)
				return
			}
		}
	}
	next := b.self.(executor).executeSingleImpl(ui, ws)
	b.setStatus(ui, next)
}

func (b *base) setStatus(ui interfaces.UserInterface, status models.ExecutionStatus) {
	if status == b.status {
		return
	}
	b.status = status
	ui.UpdateInstructionStatus(b.self)
}

// Halt requests cooperative termination. Blocking leaves poll the flag;
// compound and decorator hooks recurse into children.
func (b *base) Halt() {
	b.haltRequested.Store(true)
	if h, ok := b.self.(haltImpler); ok {
		h.haltImpl()
	}
}

// Reset restores the node to NotStarted, running the concrete reset hook
// first (which recurses into children and clears transient state).
func (b *base) Reset(ui interfaces.UserInterface) {
	if r, ok := b.self.(resetHooker); ok {
		r.resetHook(ui)
	}
	b.haltRequested.Store(false)
	b.setStatus(ui, models.StatusNotStarted)
}

func (b *base) ChildInstructions() []Instruction {
	return b.children
}

func (b *base) InsertChild(child Instruction, idx int) bool {
	if child == nil {
		return false
	}
	switch b.category {
	case models.CategoryAction:
		return false
	case models.CategoryDecorator:
		if len(b.children) != 0 {
			return false
		}
	}
	if idx < 0 || idx > len(b.children) {
		idx = len(b.children)
	}
	b.children = append(b.children, nil)
	copy(b.children[idx+1:], b.children[idx:])
	b.children[idx] = child
	return true
}

// NextInstructions defaults to the node itself for actions still needing a
// tick; compound and decorator kinds override through their hook.
func (b *base) NextInstructions() []Instruction {
	if n, ok := b.self.(nextInstructionsImpler); ok {
		return n.nextInstructionsImpl()
	}
	if b.category == models.CategoryAction && b.status.NeedsExecute() {
		return []Instruction{b.self}
	}
	return nil
}

// Clone builds a fresh instruction of the same registered type with copies
// of all attributes and recursively cloned children. Execution state is not
// carried over.
func Clone(instr Instruction) (Instruction, error) {
	copyInstr, err := GlobalRegistry().Create(instr.GetType())
	if err != nil {
		return nil, err
	}
	for _, attr := range instr.GetAttributes() {
		copyInstr.SetAttribute(attr.Name, attr.Value)
	}
	for _, child := range instr.ChildInstructions() {
		childCopy, err := Clone(child)
		if err != nil {
			return nil, err
		}
		if !copyInstr.InsertChild(childCopy, -1) {
			return nil, fmt.Errorf("cannot attach child to cloned %q", instr.GetType())
		}
	}
	return copyInstr, nil
}
