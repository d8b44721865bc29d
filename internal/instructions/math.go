package instructions

import (
	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Registered type names of the arithmetic and comparison instructions.
const (
	IncrementType   = "Increment"
	DecrementType   = "Decrement"
	EqualsType      = "Equals"
	GreaterThanType = "GreaterThan"
	LessThanType    = "LessThan"
)

// Attribute names for comparisons.
const (
	LeftVariableAttribute  = "leftVar"
	RightVariableAttribute = "rightVar"
)

// stepVariable adds delta to the numeric variable a varName attribute
// addresses.
func stepVariable(instr Instruction, ui interfaces.UserInterface,
	ws *workspace.Workspace, delta int64) models.ExecutionStatus {
	value, ok := GetAttributeValue(instr, ui, ws, VariableNameAttribute)
	if !ok {
		return models.StatusFailure
	}
	if err := value.Increment(delta); err != nil {
		logWarning(ui, "instruction %q (type %s): %v", instr.GetName(), instr.GetType(), err)
		return models.StatusFailure
	}
	if !SetValueFromAttributeName(instr, ui, ws, VariableNameAttribute, value) {
		return models.StatusFailure
	}
	return models.StatusSuccess
}

// Increment adds one to a numeric workspace variable.
type Increment struct {
	base
}

// NewIncrement creates an Increment action
func NewIncrement() *Increment {
	i := &Increment{}
	i.init(i, IncrementType, models.CategoryAction)
	declareVariableNameAttribute(&i.base, VariableNameAttribute, true)
	return i
}

func (i *Increment) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	return stepVariable(i, ui, ws, 1)
}

// Decrement subtracts one from a numeric workspace variable.
type Decrement struct {
	base
}

// NewDecrement creates a Decrement action
func NewDecrement() *Decrement {
	d := &Decrement{}
	d.init(d, DecrementType, models.CategoryAction)
	declareVariableNameAttribute(&d.base, VariableNameAttribute, true)
	return d
}

func (d *Decrement) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	return stepVariable(d, ui, ws, -1)
}

// comparison loads both operand attributes and evaluates a predicate over
// their ordering.
func comparison(instr Instruction, ui interfaces.UserInterface, ws *workspace.Workspace,
	pred func(left, right anyvalue.AnyValue) (bool, error)) models.ExecutionStatus {
	left, ok := GetAttributeValue(instr, ui, ws, LeftVariableAttribute)
	if !ok {
		return models.StatusFailure
	}
	right, ok := GetAttributeValue(instr, ui, ws, RightVariableAttribute)
	if !ok {
		return models.StatusFailure
	}
	result, err := pred(left, right)
	if err != nil {
		logWarning(ui, "instruction %q (type %s): %v", instr.GetName(), instr.GetType(), err)
		return models.StatusFailure
	}
	if !result {
		return models.StatusFailure
	}
	return models.StatusSuccess
}

// Equals succeeds iff both operands are deeply equal.
type Equals struct {
	base
}

// NewEquals creates an Equals action
func NewEquals() *Equals {
	e := &Equals{}
	e.init(e, EqualsType, models.CategoryAction)
	declareVariableNameAttribute(&e.base, LeftVariableAttribute, true)
	declareVariableNameAttribute(&e.base, RightVariableAttribute, true)
	return e
}

func (e *Equals) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	return comparison(e, ui, ws, func(left, right anyvalue.AnyValue) (bool, error) {
		return left.Equals(right), nil
	})
}

// GreaterThan succeeds iff the left operand orders strictly after the right.
type GreaterThan struct {
	base
}

// NewGreaterThan creates a GreaterThan action
func NewGreaterThan() *GreaterThan {
	g := &GreaterThan{}
	g.init(g, GreaterThanType, models.CategoryAction)
	declareVariableNameAttribute(&g.base, LeftVariableAttribute, true)
	declareVariableNameAttribute(&g.base, RightVariableAttribute, true)
	return g
}

func (g *GreaterThan) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	return comparison(g, ui, ws, func(left, right anyvalue.AnyValue) (bool, error) {
		order, err := anyvalue.Compare(left, right)
		return order > 0, err
	})
}

// LessThan succeeds iff the left operand orders strictly before the right.
type LessThan struct {
	base
}

// NewLessThan creates a LessThan action
func NewLessThan() *LessThan {
	l := &LessThan{}
	l.init(l, LessThanType, models.CategoryAction)
	declareVariableNameAttribute(&l.base, LeftVariableAttribute, true)
	declareVariableNameAttribute(&l.base, RightVariableAttribute, true)
	return l
}

func (l *LessThan) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	return comparison(l, ui, ws, func(left, right anyvalue.AnyValue) (bool, error) {
		order, err := anyvalue.Compare(left, right)
		return order < 0, err
	})
}

func init() {
	mustRegister(IncrementType, func() Instruction { return NewIncrement() })
	mustRegister(DecrementType, func() Instruction { return NewDecrement() })
	mustRegister(EqualsType, func() Instruction { return NewEquals() })
	mustRegister(GreaterThanType, func() Instruction { return NewGreaterThan() })
	mustRegister(LessThanType, func() Instruction { return NewLessThan() })
}
