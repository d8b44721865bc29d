package instructions

import (
	"sync"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// ParallelSequenceType is the registered type name of ParallelSequence.
const ParallelSequenceType = "ParallelSequence"

// Threshold attribute names.
const (
	SuccessThresholdAttribute = "successThreshold"
	FailureThresholdAttribute = "failureThreshold"
)

// ParallelSequence evaluates all children concurrently, one worker per
// child per tick, joined at each tick boundary so thresholds are evaluated
// consistently. It succeeds when at least successThreshold children
// succeed and fails when at least failureThreshold children fail.
type ParallelSequence struct {
	compoundBase
	successTh int
	failureTh int
}

// NewParallelSequence creates a ParallelSequence compound
func NewParallelSequence() *ParallelSequence {
	p := &ParallelSequence{}
	p.initCompound(p, ParallelSequenceType)
	p.addAttributeDefinition(SuccessThresholdAttribute, anyvalue.UInt32Type)
	p.addAttributeDefinition(FailureThresholdAttribute, anyvalue.UInt32Type)
	return p
}

func (p *ParallelSequence) setupImpl(ctx SetupContext) error {
	if err := p.setupChildren(ctx); err != nil {
		return err
	}
	n := len(p.children)

	// defaults: all children must succeed, any failure fails the parent
	p.successTh = n
	p.failureTh = 1

	successFromAttr := false
	if p.HasAttribute(SuccessThresholdAttribute) {
		th, err := p.attrs.GetLiteralValue(SuccessThresholdAttribute)
		if err != nil {
			return p.thresholdError(SuccessThresholdAttribute, err)
		}
		u, _ := th.AsUInt64()
		p.successTh = int(u)
		p.failureTh = n - p.successTh + 1
		successFromAttr = true
	}
	if p.HasAttribute(FailureThresholdAttribute) {
		th, err := p.attrs.GetLiteralValue(FailureThresholdAttribute)
		if err != nil {
			return p.thresholdError(FailureThresholdAttribute, err)
		}
		u, _ := th.AsUInt64()
		if successFromAttr {
			p.failureTh = min(int(u), n-p.successTh+1)
		} else {
			p.failureTh = int(u)
			p.successTh = n - int(u) + 1
		}
	}
	return nil
}

func (p *ParallelSequence) thresholdError(attrName string, err error) error {
	return &models.InstructionSetupError{
		InstructionName: p.GetName(),
		InstructionType: p.GetType(),
		Reason:          "could not parse " + attrName + " attribute: " + err.Error(),
	}
}

func (p *ParallelSequence) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	var wg sync.WaitGroup
	for _, child := range p.children {
		if !child.GetStatus().NeedsExecute() {
			continue
		}
		wg.Add(1)
		go func(c Instruction) {
			defer wg.Done()
			c.ExecuteSingle(ui, ws)
		}(child)
	}
	wg.Wait()

	status := p.calculateCompoundStatus()
	if status != models.StatusRunning {
		p.haltImpl()
	}
	return status
}

func (p *ParallelSequence) calculateCompoundStatus() models.ExecutionStatus {
	nSuccess := 0
	nFailure := 0
	for _, child := range p.children {
		switch child.GetStatus() {
		case models.StatusSuccess:
			nSuccess++
		case models.StatusFailure:
			nFailure++
		}
	}
	if nSuccess >= p.successTh {
		return models.StatusSuccess
	}
	if nFailure >= p.failureTh {
		return models.StatusFailure
	}
	return models.StatusRunning
}

func (p *ParallelSequence) resetHook(ui interfaces.UserInterface) {
	if p.status == models.StatusRunning {
		p.haltImpl()
	}
	p.resetChildren(ui)
}

func (p *ParallelSequence) nextInstructionsImpl() []Instruction {
	if p.status.IsFinished() {
		return nil
	}
	var next []Instruction
	for _, child := range p.children {
		if child.GetStatus().NeedsExecute() {
			next = append(next, child.NextInstructions()...)
		}
	}
	return next
}

func init() {
	mustRegister(ParallelSequenceType, func() Instruction { return NewParallelSequence() })
}
