package instructions

// Tree is a lightweight snapshot of instruction parent/child relations,
// built either over all children (full tree) or over the children each
// node would tick next (next-instruction tree).
type Tree struct {
	instruction Instruction
	children    []*Tree
}

// GetInstruction returns the node's instruction
func (t *Tree) GetInstruction() Instruction {
	return t.instruction
}

// GetChildren returns the child subtrees
func (t *Tree) GetChildren() []*Tree {
	return t.children
}

type childSelector func(Instruction) []Instruction

func createTree(root Instruction, selector childSelector) *Tree {
	if root == nil {
		return nil
	}
	result := &Tree{instruction: root}
	stack := []*Tree{result}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range selector(node.instruction) {
			if child == nil {
				continue
			}
			sub := &Tree{instruction: child}
			node.children = append(node.children, sub)
			stack = append(stack, sub)
		}
	}
	return result
}

// CreateFullTree snapshots the complete ownership tree under root
func CreateFullTree(root Instruction) *Tree {
	return createTree(root, func(instr Instruction) []Instruction {
		return instr.ChildInstructions()
	})
}

// CreateNextTree snapshots the tree of instructions that would execute on
// the next tick.
func CreateNextTree(root Instruction) *Tree {
	return createTree(root, func(instr Instruction) []Instruction {
		return instr.NextInstructions()
	})
}

// Leaves returns the tree's leaf instructions in breadth-first order
func Leaves(tree *Tree) []Instruction {
	if tree == nil {
		return nil
	}
	var result []Instruction
	queue := []*Tree{tree}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if len(node.children) == 0 {
			result = append(result, node.instruction)
			continue
		}
		queue = append(queue, node.children...)
	}
	return result
}

// FlattenBFS returns all tree instructions in breadth-first order
func FlattenBFS(tree *Tree) []Instruction {
	if tree == nil {
		return nil
	}
	var result []Instruction
	queue := []*Tree{tree}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node.instruction)
		queue = append(queue, node.children...)
	}
	return result
}

// NextLeaves computes the leaves the engine would tick next from root
func NextLeaves(root Instruction) []Instruction {
	return Leaves(CreateNextTree(root))
}
