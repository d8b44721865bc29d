package instructions

import (
	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// RepeatType is the registered type name of the Repeat instruction.
const RepeatType = "Repeat"

// MaxCountAttribute bounds the number of repetitions.
const MaxCountAttribute = "maxCount"

// Repeat re-ticks its child up to maxCount times, resetting it between
// iterations. It fails on the child's first Failure and succeeds after the
// maxCount-th Success. A negative maxCount repeats forever.
type Repeat struct {
	decoratorBase
	maxCount  int
	completed int
}

// NewRepeat creates a Repeat decorator
func NewRepeat() *Repeat {
	r := &Repeat{}
	r.initDecorator(r, RepeatType)
	r.addAttributeDefinition(MaxCountAttribute, anyvalue.Int32Type)
	return r
}

func (r *Repeat) setupImpl(ctx SetupContext) error {
	r.maxCount = 1
	if r.HasAttribute(MaxCountAttribute) {
		value, err := r.attrs.GetLiteralValue(MaxCountAttribute)
		if err != nil {
			return &models.InstructionSetupError{
				InstructionName: r.GetName(),
				InstructionType: r.GetType(),
				Reason:          "could not parse maxCount attribute: " + err.Error(),
			}
		}
		i, _ := value.AsInt64()
		r.maxCount = int(i)
	}
	return r.setupChild(ctx)
}

func (r *Repeat) initHook(ui interfaces.UserInterface, ws *workspace.Workspace) bool {
	r.completed = 0
	return true
}

func (r *Repeat) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	if r.maxCount == 0 {
		return models.StatusSuccess
	}
	child := r.child()
	if child.GetStatus().IsFinished() {
		child.Reset(ui)
	}
	child.ExecuteSingle(ui, ws)

	switch child.GetStatus() {
	case models.StatusFailure:
		return models.StatusFailure
	case models.StatusSuccess:
		r.completed++
		if r.maxCount >= 0 && r.completed >= r.maxCount {
			return models.StatusSuccess
		}
		return models.StatusNotFinished
	case models.StatusRunning:
		return models.StatusRunning
	default:
		return models.StatusNotFinished
	}
}

func (r *Repeat) resetHook(ui interfaces.UserInterface) {
	r.completed = 0
	r.resetChild(ui)
}

func (r *Repeat) nextInstructionsImpl() []Instruction {
	if r.status.IsFinished() {
		return nil
	}
	child := r.child()
	if child == nil {
		return nil
	}
	if child.GetStatus().NeedsExecute() {
		return child.NextInstructions()
	}
	return nil
}

func init() {
	mustRegister(RepeatType, func() Instruction { return NewRepeat() })
}
