package instructions

import (
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
)

// compoundBase carries the child bookkeeping shared by compound
// instructions. It halts and resets children by default; concrete
// compounds implement executeSingleImpl and nextInstructionsImpl.
type compoundBase struct {
	base
}

func (c *compoundBase) initCompound(self Instruction, instrType string) {
	c.init(self, instrType, models.CategoryCompound)
}

// setupChildren recurses Setup into all children
func (c *compoundBase) setupChildren(ctx SetupContext) error {
	for _, child := range c.children {
		if err := child.Setup(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *compoundBase) setupImpl(ctx SetupContext) error {
	return c.setupChildren(ctx)
}

func (c *compoundBase) haltImpl() {
	for _, child := range c.children {
		child.Halt()
	}
}

func (c *compoundBase) resetHook(ui interfaces.UserInterface) {
	c.resetChildren(ui)
}

func (c *compoundBase) resetChildren(ui interfaces.UserInterface) {
	for _, child := range c.children {
		child.Reset(ui)
	}
}

// decoratorBase carries the single-child bookkeeping shared by decorator
// instructions.
type decoratorBase struct {
	base
}

func (d *decoratorBase) initDecorator(self Instruction, instrType string) {
	d.init(self, instrType, models.CategoryDecorator)
}

func (d *decoratorBase) child() Instruction {
	if len(d.children) == 0 {
		return nil
	}
	return d.children[0]
}

func (d *decoratorBase) childStatus() models.ExecutionStatus {
	child := d.child()
	if child == nil {
		return models.StatusNotStarted
	}
	return child.GetStatus()
}

func (d *decoratorBase) setupChild(ctx SetupContext) error {
	return d.child().Setup(ctx)
}

func (d *decoratorBase) setupImpl(ctx SetupContext) error {
	return d.setupChild(ctx)
}

func (d *decoratorBase) haltImpl() {
	if child := d.child(); child != nil {
		child.Halt()
	}
}

func (d *decoratorBase) resetHook(ui interfaces.UserInterface) {
	d.resetChild(ui)
}

func (d *decoratorBase) resetChild(ui interfaces.UserInterface) {
	if child := d.child(); child != nil {
		child.Reset(ui)
	}
}

func (d *decoratorBase) nextInstructionsImpl() []Instruction {
	if d.status.IsFinished() {
		return nil
	}
	child := d.child()
	if child == nil || !child.GetStatus().NeedsExecute() {
		return nil
	}
	return child.NextInstructions()
}
