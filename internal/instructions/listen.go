package instructions

import (
	"strings"
	"sync"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// ListenType is the registered type name of the Listen instruction.
const ListenType = "Listen"

// Listen attribute names.
const (
	VarNamesAttribute     = "varNames"
	ForceSuccessAttribute = "forceSuccess"
)

// Listen registers workspace callbacks for a set of variables and ticks
// its child; whenever a watched variable changes, the child is reset and
// re-ticked. Listen never finishes on child Success (and, with the
// forceSuccess attribute, not on child Failure either); Halt breaks the
// wait with Failure.
type Listen struct {
	decoratorBase
	forceSuccess bool
	varNames     []string

	mu         sync.Mutex
	cond       *sync.Cond
	varChanged bool
	varCache   map[string]anyvalue.AnyValue
	guard      *workspace.CallbackGuard
}

// NewListen creates a Listen decorator
func NewListen() *Listen {
	l := &Listen{varCache: make(map[string]anyvalue.AnyValue)}
	l.initDecorator(l, ListenType)
	l.cond = sync.NewCond(&l.mu)
	l.addAttributeDefinition(VarNamesAttribute, anyvalue.StringType).SetMandatory()
	l.addAttributeDefinition(ForceSuccessAttribute, anyvalue.BoolType)
	return l
}

func (l *Listen) setupImpl(ctx SetupContext) error {
	l.forceSuccess = false
	if l.HasAttribute(ForceSuccessAttribute) {
		value, err := l.attrs.GetLiteralValue(ForceSuccessAttribute)
		if err != nil {
			return &models.InstructionSetupError{
				InstructionName: l.GetName(),
				InstructionType: l.GetType(),
				Reason:          "could not parse forceSuccess attribute: " + err.Error(),
			}
		}
		l.forceSuccess, _ = value.AsBool()
	}
	l.varNames = splitVarNames(l.GetAttribute(VarNamesAttribute))
	if len(l.varNames) == 0 {
		return &models.InstructionSetupError{
			InstructionName: l.GetName(),
			InstructionType: l.GetType(),
			Reason:          "varNames attribute holds no variable names",
		}
	}
	l.mu.Lock()
	l.varChanged = true
	l.varCache = make(map[string]anyvalue.AnyValue)
	l.mu.Unlock()
	return l.setupChild(ctx)
}

func (l *Listen) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	if l.guard == nil || !l.guard.IsValid() {
		l.mu.Lock()
		l.varChanged = false
		l.mu.Unlock()
		l.registerCallbacks(ws)
	}
	if l.childStatus().IsFinished() {
		l.resetChild(ui)
		l.mu.Lock()
		for !l.varChanged && !l.IsHaltRequested() {
			l.cond.Wait()
		}
		l.varChanged = false
		halted := l.IsHaltRequested()
		l.mu.Unlock()
		if halted {
			return models.StatusFailure
		}
	}
	l.child().ExecuteSingle(ui, ws)
	status := l.calculateStatus()
	if status.IsFinished() {
		l.clearCallbacks()
	}
	return status
}

func (l *Listen) calculateStatus() models.ExecutionStatus {
	status := l.childStatus()
	if status == models.StatusSuccess {
		return models.StatusNotFinished
	}
	if l.forceSuccess && status == models.StatusFailure {
		return models.StatusNotFinished
	}
	return status
}

func (l *Listen) haltImpl() {
	l.clearCallbacks()
	if child := l.child(); child != nil {
		child.Halt()
	}
	l.cond.Broadcast()
}

func (l *Listen) resetHook(ui interfaces.UserInterface) {
	l.clearCallbacks()
	l.resetChild(ui)
}

func (l *Listen) updateCallback(name string, value anyvalue.AnyValue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.varCache[name]; ok && cached.Equals(value) {
		return
	}
	l.varCache[name] = value
	l.varChanged = true
	l.cond.Broadcast()
}

func (l *Listen) registerCallbacks(ws *workspace.Workspace) {
	l.guard = ws.GetCallbackGuard(l)
	for _, name := range l.varNames {
		varName := name
		_ = ws.RegisterCallback(varName, func(value anyvalue.AnyValue, connected bool) {
			l.updateCallback(varName, value)
		}, l)
	}
}

func (l *Listen) clearCallbacks() {
	if l.guard != nil {
		l.guard.Release()
	}
}

func splitVarNames(attr string) []string {
	var names []string
	for _, part := range strings.Split(attr, models.VarNamesDelimiter) {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func init() {
	mustRegister(ListenType, func() Instruction { return NewListen() })
}
