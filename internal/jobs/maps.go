package jobs

import (
	"fmt"

	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/procedure"
)

// InstructionMap assigns dense indices to all instructions of a tree in
// breadth-first order from the root. Indices are immutable for the job's
// lifetime and form the wire format for external control.
type InstructionMap struct {
	indices map[instructions.Instruction]uint32
	ordered []instructions.Instruction
}

// NewInstructionMap builds the BFS index for a root instruction
func NewInstructionMap(root instructions.Instruction) (*InstructionMap, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: instruction map needs a root instruction",
			models.ErrInvalidOperation)
	}
	ordered := instructions.FlattenBFS(instructions.CreateFullTree(root))
	indices := make(map[instructions.Instruction]uint32, len(ordered))
	for i, instr := range ordered {
		if _, dup := indices[instr]; dup {
			return nil, fmt.Errorf("%w: duplicate instruction in tree",
				models.ErrInvalidOperation)
		}
		indices[instr] = uint32(i)
	}
	return &InstructionMap{indices: indices, ordered: ordered}, nil
}

// FindInstructionIndex returns the BFS index of an instruction
func (m *InstructionMap) FindInstructionIndex(instr instructions.Instruction) (uint32, error) {
	idx, ok := m.indices[instr]
	if !ok {
		return 0, fmt.Errorf("%w: unknown instruction", models.ErrInvalidOperation)
	}
	return idx, nil
}

// InstructionAt returns the instruction with the given index
func (m *InstructionMap) InstructionAt(idx uint32) (instructions.Instruction, error) {
	if int(idx) >= len(m.ordered) {
		return nil, fmt.Errorf("%w: instruction index %d out of range",
			models.ErrInvalidOperation, idx)
	}
	return m.ordered[idx], nil
}

// GetNumberOfInstructions returns the indexed instruction count
func (m *InstructionMap) GetNumberOfInstructions() uint32 {
	return uint32(len(m.ordered))
}

// OrderedInstructions returns the instructions in index order
func (m *InstructionMap) OrderedInstructions() []instructions.Instruction {
	return m.ordered
}

// VariableMap assigns dense indices to workspace variables in insertion
// order.
type VariableMap struct {
	indices map[string]uint32
	ordered []string
}

// NewVariableMap builds the index over a procedure's workspace
func NewVariableMap(names []string) *VariableMap {
	indices := make(map[string]uint32, len(names))
	ordered := make([]string, len(names))
	copy(ordered, names)
	for i, name := range ordered {
		indices[name] = uint32(i)
	}
	return &VariableMap{indices: indices, ordered: ordered}
}

// FindVariableIndex returns the index of a variable name
func (m *VariableMap) FindVariableIndex(name string) (uint32, error) {
	idx, ok := m.indices[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown variable %q", models.ErrInvalidOperation, name)
	}
	return idx, nil
}

// GetNumberOfVariables returns the indexed variable count
func (m *VariableMap) GetNumberOfVariables() uint32 {
	return uint32(len(m.ordered))
}

// OrderedVariableNames returns the names in index order
func (m *VariableMap) OrderedVariableNames() []string {
	return m.ordered
}

// JobMap bundles the instruction and variable indices of one job.
type JobMap struct {
	instructionMap *InstructionMap
	variableMap    *VariableMap
}

// NewJobMap builds both indices for a procedure
func NewJobMap(proc *procedure.Procedure) (*JobMap, error) {
	im, err := NewInstructionMap(proc.RootInstruction())
	if err != nil {
		return nil, err
	}
	return &JobMap{
		instructionMap: im,
		variableMap:    NewVariableMap(proc.Workspace().VariableNames()),
	}, nil
}

// GetInstructionIndex returns an instruction's BFS index
func (m *JobMap) GetInstructionIndex(instr instructions.Instruction) (uint32, error) {
	return m.instructionMap.FindInstructionIndex(instr)
}

// InstructionAt resolves an index back to its instruction
func (m *JobMap) InstructionAt(idx uint32) (instructions.Instruction, error) {
	return m.instructionMap.InstructionAt(idx)
}

// GetVariableIndex returns a variable's insertion index
func (m *JobMap) GetVariableIndex(name string) (uint32, error) {
	return m.variableMap.FindVariableIndex(name)
}

// GetNumberOfInstructions returns the instruction count
func (m *JobMap) GetNumberOfInstructions() uint32 {
	return m.instructionMap.GetNumberOfInstructions()
}

// GetNumberOfVariables returns the variable count
func (m *JobMap) GetNumberOfVariables() uint32 {
	return m.variableMap.GetNumberOfVariables()
}

// InstructionMap exposes the instruction index
func (m *JobMap) InstructionMap() *InstructionMap {
	return m.instructionMap
}

// VariableMap exposes the variable index
func (m *JobMap) VariableMap() *VariableMap {
	return m.variableMap
}
