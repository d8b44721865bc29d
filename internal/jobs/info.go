package jobs

import (
	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/procedure"
)

// BuildJobInfo creates the serialisable static description of a job from
// its procedure and index map.
func BuildJobInfo(id string, proc *procedure.Procedure, jobMap *JobMap) (models.JobInfo, error) {
	tree, err := buildInstructionInfo(proc.RootInstruction(), jobMap)
	if err != nil {
		return models.JobInfo{}, err
	}
	wsInfo, err := buildWorkspaceInfo(proc, jobMap)
	if err != nil {
		return models.JobInfo{}, err
	}
	return models.JobInfo{
		ID:                   id,
		FullName:             proc.GetFilename(),
		Workspace:            wsInfo,
		InstructionTree:      tree,
		NumberOfInstructions: jobMap.GetNumberOfInstructions(),
		NumberOfVariables:    jobMap.GetNumberOfVariables(),
	}, nil
}

func buildInstructionInfo(instr instructions.Instruction, jobMap *JobMap) (*models.InstructionInfo, error) {
	idx, err := jobMap.GetInstructionIndex(instr)
	if err != nil {
		return nil, err
	}
	info := &models.InstructionInfo{
		Type:     instr.GetType(),
		Name:     instr.GetName(),
		Category: instr.GetCategory(),
		Index:    idx,
	}
	for _, attr := range instr.GetAttributes() {
		info.Attributes = append(info.Attributes, models.AttributeInfo{
			Name:  attr.Name,
			Value: attr.Value,
		})
	}
	for _, child := range instr.ChildInstructions() {
		childInfo, err := buildInstructionInfo(child, jobMap)
		if err != nil {
			return nil, err
		}
		info.Children = append(info.Children, childInfo)
	}
	return info, nil
}

func buildWorkspaceInfo(proc *procedure.Procedure, jobMap *JobMap) (models.WorkspaceInfo, error) {
	var wsInfo models.WorkspaceInfo
	for _, name := range proc.Workspace().VariableNames() {
		idx, err := jobMap.GetVariableIndex(name)
		if err != nil {
			return models.WorkspaceInfo{}, err
		}
		v, _ := proc.Workspace().GetVariable(name)
		varInfo := models.VariableInfo{
			Type:  v.GetType(),
			Name:  name,
			Index: idx,
		}
		for _, attr := range v.GetAttributes() {
			varInfo.Attributes = append(varInfo.Attributes, models.AttributeInfo{
				Name:  attr.Name,
				Value: attr.Value,
			})
		}
		wsInfo.Variables = append(wsInfo.Variables, varInfo)
	}
	return wsInfo, nil
}
