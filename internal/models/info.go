package models

// AttributeInfo is a flat copy of a raw string attribute
type AttributeInfo struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// InstructionInfo is a flat, copyable description of one instruction node
// and its subtree. Index is the BFS index assigned by the job map.
type InstructionInfo struct {
	Type       string              `json:"type"`
	Name       string              `json:"name,omitempty"`
	Category   InstructionCategory `json:"category"`
	Index      uint32              `json:"index"`
	Attributes []AttributeInfo     `json:"attributes,omitempty"`
	Children   []*InstructionInfo  `json:"children,omitempty"`
}

// VariableInfo is a flat description of one workspace variable. Index is
// the insertion-order index assigned by the job map.
type VariableInfo struct {
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Index      uint32          `json:"index"`
	Attributes []AttributeInfo `json:"attributes,omitempty"`
}

// WorkspaceInfo describes all variables of a procedure workspace
type WorkspaceInfo struct {
	Variables []VariableInfo `json:"variables"`
}

// JobInfo is the serialisable static description of a job: its procedure
// name, workspace and full instruction tree.
type JobInfo struct {
	ID                    string           `json:"id"`
	FullName              string           `json:"full_name"`
	Workspace             WorkspaceInfo    `json:"workspace"`
	InstructionTree       *InstructionInfo `json:"instruction_tree"`
	NumberOfInstructions  uint32           `json:"number_of_instructions"`
	NumberOfVariables     uint32           `json:"number_of_variables"`
}
