package procedure

import (
	"fmt"
	"path/filepath"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/workspace"
)

// Procedure aggregates a top-level instruction list, a workspace and a
// preamble, parsed from one procedure file. It implements the setup
// context instructions query during Setup.
type Procedure struct {
	filename  string
	ws        *workspace.Workspace
	registry  *anyvalue.TypeRegistry
	preamble  Preamble
	top       []instructions.Instruction
	store     *Store
	setupDone bool
}

// New creates an empty procedure for the given filename (may be empty for
// in-memory procedures).
func New(filename string) *Procedure {
	p := &Procedure{
		filename: filename,
		ws:       workspace.New(),
		registry: anyvalue.NewTypeRegistry(),
	}
	p.store = NewStore(nil)
	return p
}

// SetLoader installs the loader used to resolve sub-procedure files
func (p *Procedure) SetLoader(load LoadFunc) {
	p.store = NewStore(load)
}

// GetFilename returns the procedure's source file
func (p *Procedure) GetFilename() string { return p.filename }

// Workspace returns the procedure's workspace
func (p *Procedure) Workspace() *workspace.Workspace { return p.ws }

// TypeRegistry returns the procedure's registered value types
func (p *Procedure) TypeRegistry() *anyvalue.TypeRegistry { return p.registry }

// GetPreamble returns the mutable preamble
func (p *Procedure) GetPreamble() *Preamble { return &p.preamble }

// AddInstruction appends a top-level instruction
func (p *Procedure) AddInstruction(instr instructions.Instruction) {
	if instr != nil {
		p.top = append(p.top, instr)
	}
}

// AddVariable registers a workspace variable
func (p *Procedure) AddVariable(name string, v workspace.Variable) error {
	return p.ws.AddVariable(name, v)
}

// RootInstruction returns the first top-level instruction, or nil
func (p *Procedure) RootInstruction() instructions.Instruction {
	if len(p.top) == 0 {
		return nil
	}
	return p.top[0]
}

// TopInstructions returns all top-level instructions
func (p *Procedure) TopInstructions() []instructions.Instruction {
	return p.top
}

// Setup applies the preamble, sets up the workspace and recursively sets
// up the instruction tree. It fails with a procedure setup error carrying
// the underlying cause.
func (p *Procedure) Setup() error {
	if p.setupDone {
		return nil
	}
	if len(p.top) == 0 {
		return fmt.Errorf("%w: procedure %q has no instructions",
			models.ErrProcedureSetup, p.filename)
	}
	if err := p.preamble.Apply(p.registry); err != nil {
		return fmt.Errorf("%w: %v", models.ErrProcedureSetup, err)
	}
	if err := p.ws.Setup(p.registry); err != nil {
		return fmt.Errorf("%w: %v", models.ErrProcedureSetup, err)
	}
	// sub-procedures cached before a Teardown restart from their initial values
	if err := p.store.ResetAll(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrProcedureSetup, err)
	}
	for _, instr := range p.top {
		if err := instr.Setup(p); err != nil {
			return fmt.Errorf("%w: %v", models.ErrProcedureSetup, err)
		}
	}
	p.setupDone = true
	return nil
}

// Teardown releases the workspace and all cached sub-procedures
func (p *Procedure) Teardown() {
	p.store.TeardownAll()
	p.ws.Teardown()
	// preamble types re-register on the next Setup
	p.registry = anyvalue.NewTypeRegistry()
	p.setupDone = false
}

// IsSetup reports whether Setup completed
func (p *Procedure) IsSetup() bool { return p.setupDone }

// SubProcedure resolves an instruction tree for Include. An empty filename
// addresses the current procedure; path names an instruction (empty for
// the root). The returned instruction is a fresh clone.
func (p *Procedure) SubProcedure(filename, path string) (instructions.Instruction, *workspace.Workspace, error) {
	if filename == "" {
		instr, err := p.findInstruction(path)
		if err != nil {
			return nil, nil, err
		}
		clone, err := instructions.Clone(instr)
		if err != nil {
			return nil, nil, err
		}
		return clone, p.ws, nil
	}
	resolved := filename
	if !filepath.IsAbs(filename) && p.filename != "" {
		resolved = filepath.Join(filepath.Dir(p.filename), filename)
	}
	sub, err := p.store.Load(resolved)
	if err != nil {
		return nil, nil, err
	}
	instr, err := sub.findInstruction(path)
	if err != nil {
		return nil, nil, err
	}
	clone, err := instructions.Clone(instr)
	if err != nil {
		return nil, nil, err
	}
	return clone, sub.ws, nil
}

// findInstruction locates an instruction by name anywhere in the top-level
// trees; the empty path addresses the root instruction.
func (p *Procedure) findInstruction(path string) (instructions.Instruction, error) {
	if path == "" {
		root := p.RootInstruction()
		if root == nil {
			return nil, fmt.Errorf("procedure %q has no root instruction", p.filename)
		}
		return root, nil
	}
	for _, top := range p.top {
		for _, instr := range instructions.FlattenBFS(instructions.CreateFullTree(top)) {
			if instr.GetName() == path {
				return instr, nil
			}
		}
	}
	return nil, fmt.Errorf("no instruction named %q in procedure %q", path, p.filename)
}
