package instructions

import (
	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// IncludeType is the registered type name of the Include instruction.
const IncludeType = "Include"

// Include attribute names.
const (
	FileAttribute = "file"
	PathAttribute = "path"
)

// Include delegates to an instruction tree from a sub-procedure: on the
// first tick it clones the tree named by its file/path attributes and then
// forwards every tick to the clone, scoped to the sub-procedure's
// workspace.
type Include struct {
	base
	ctx      SetupContext
	delegate Instruction
	subWs    *workspace.Workspace
}

// NewInclude creates an Include action
func NewInclude() *Include {
	i := &Include{}
	i.init(i, IncludeType, models.CategoryAction)
	i.addAttributeDefinition(PathAttribute, anyvalue.StringType)
	i.addAttributeDefinition(FileAttribute, anyvalue.StringType)
	return i
}

func (i *Include) setupImpl(ctx SetupContext) error {
	i.ctx = ctx
	i.delegate = nil
	i.subWs = nil
	return nil
}

func (i *Include) initHook(ui interfaces.UserInterface, ws *workspace.Workspace) bool {
	if i.delegate != nil {
		return true
	}
	delegate, subWs, err := i.ctx.SubProcedure(i.GetAttribute(FileAttribute), i.GetAttribute(PathAttribute))
	if err != nil {
		logError(ui, "instruction %q (type %s): cannot resolve sub-procedure: %v",
			i.GetName(), i.GetType(), err)
		return false
	}
	if err := delegate.Setup(i.ctx); err != nil {
		logError(ui, "instruction %q (type %s): sub-procedure setup failed: %v",
			i.GetName(), i.GetType(), err)
		return false
	}
	i.delegate = delegate
	i.subWs = subWs
	return true
}

func (i *Include) executeSingleImpl(ui interfaces.UserInterface, ws *workspace.Workspace) models.ExecutionStatus {
	target := ws
	if i.subWs != nil {
		target = i.subWs
	}
	i.delegate.ExecuteSingle(ui, target)
	return i.delegate.GetStatus()
}

func (i *Include) haltImpl() {
	if i.delegate != nil {
		i.delegate.Halt()
	}
}

func (i *Include) resetHook(ui interfaces.UserInterface) {
	if i.delegate != nil {
		i.delegate.Reset(ui)
	}
	i.delegate = nil
	i.subWs = nil
}

func init() {
	mustRegister(IncludeType, func() Instruction { return NewInclude() })
}
