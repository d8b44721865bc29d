package runner

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/procedure"
)

// TickResult tells the caller what one ExecuteSingle attempt did.
type TickResult int

const (
	// TickDone means the root was ticked once
	TickDone TickResult = iota
	// TickBreakpoint means a set breakpoint stalled execution before the tick
	TickBreakpoint
	// TickHalted means the halt flag prevented the tick
	TickHalted
	// TickFinished means the procedure was already finished
	TickFinished
)

// BreakpointCallback observes breakpoint set/remove transitions.
type BreakpointCallback func(instr instructions.Instruction, set bool)

// Runner is the synchronous driver of one procedure: it ticks the tree
// until finished or halted and enforces breakpoints before each tick. Only
// one goroutine may drive a Runner.
type Runner struct {
	proc *procedure.Procedure
	ui   interfaces.UserInterface

	bpMu        sync.Mutex
	breakpoints []*Breakpoint
	halt        atomic.Bool

	tickCallback       func()
	breakpointCallback BreakpointCallback
}

// New creates a runner publishing through the given user interface
func New(ui interfaces.UserInterface) *Runner {
	return &Runner{ui: ui}
}

// SetProcedure installs and sets up the procedure. Setup failures are
// returned unchanged (they carry the failing instruction's identity).
func (r *Runner) SetProcedure(proc *procedure.Procedure) error {
	if err := proc.Setup(); err != nil {
		return err
	}
	r.proc = proc
	return nil
}

// Procedure returns the installed procedure (nil before SetProcedure)
func (r *Runner) Procedure() *procedure.Procedure {
	return r.proc
}

// SetTickCallback installs a hook invoked after every tick, from the
// ticking goroutine.
func (r *Runner) SetTickCallback(cb func()) {
	r.tickCallback = cb
}

// SetBreakpointCallback installs a hook observing breakpoint changes
func (r *Runner) SetBreakpointCallback(cb BreakpointCallback) {
	r.breakpointCallback = cb
}

// SetBreakpoint marks an instruction; idempotent. If the instruction is
// among the next leaves, execution stalls before its next tick.
func (r *Runner) SetBreakpoint(instr instructions.Instruction) {
	if instr == nil {
		return
	}
	r.bpMu.Lock()
	defer r.bpMu.Unlock()
	for _, bp := range r.breakpoints {
		if bp.GetInstruction() == instr {
			return
		}
	}
	r.breakpoints = append(r.breakpoints, NewBreakpoint(instr))
	if r.breakpointCallback != nil {
		r.breakpointCallback(instr, true)
	}
}

// RemoveBreakpoint removes the marker for an instruction, if present
func (r *Runner) RemoveBreakpoint(instr instructions.Instruction) {
	r.bpMu.Lock()
	defer r.bpMu.Unlock()
	for i, bp := range r.breakpoints {
		if bp.GetInstruction() == instr {
			r.breakpoints = append(r.breakpoints[:i], r.breakpoints[i+1:]...)
			if r.breakpointCallback != nil {
				r.breakpointCallback(instr, false)
			}
			return
		}
	}
}

// ReleaseBreakpoint transitions a breakpoint to Released so the next tick
// passes it once.
func (r *Runner) ReleaseBreakpoint(instr instructions.Instruction) {
	r.bpMu.Lock()
	defer r.bpMu.Unlock()
	for _, bp := range r.breakpoints {
		if bp.GetInstruction() == instr {
			bp.SetStatus(models.BreakpointReleased)
			return
		}
	}
}

// Breakpoints returns a snapshot of the current breakpoints
func (r *Runner) Breakpoints() []*Breakpoint {
	r.bpMu.Lock()
	defer r.bpMu.Unlock()
	out := make([]*Breakpoint, len(r.breakpoints))
	copy(out, r.breakpoints)
	return out
}

// HasBreakpoint reports whether the instruction carries a breakpoint
func (r *Runner) HasBreakpoint(instr instructions.Instruction) bool {
	r.bpMu.Lock()
	defer r.bpMu.Unlock()
	for _, bp := range r.breakpoints {
		if bp.GetInstruction() == instr {
			return true
		}
	}
	return false
}

// ExecuteProcedure loops ticking the root until finished, halted or
// stalled on a breakpoint. Between ticks it sleeps briefly when the tree
// is waiting without running leaves, to avoid busy-spinning.
func (r *Runner) ExecuteProcedure() TickResult {
	result := TickDone
	for {
		result = r.ExecuteSingle()
		if result != TickDone {
			return result
		}
		if r.IsFinished() {
			return TickDone
		}
		if !r.IsRunning() {
			r.idleSleep()
		}
		if r.halt.Load() {
			return TickHalted
		}
	}
}

// ExecuteSingle performs the breakpoint check and at most one tick
func (r *Runner) ExecuteSingle() TickResult {
	root := r.rootInstruction()
	if root == nil {
		return TickFinished
	}
	if r.halt.Load() {
		return TickHalted
	}
	if root.GetStatus().IsFinished() {
		return TickFinished
	}
	if r.checkBreakpoints(root) {
		return TickBreakpoint
	}
	root.ExecuteSingle(r.ui, r.proc.Workspace())
	if r.tickCallback != nil {
		r.tickCallback()
	}
	return TickDone
}

// checkBreakpoints stalls the tick when a Set breakpoint matches one of
// the next leaves; Released breakpoints let the tick through once and
// re-arm.
func (r *Runner) checkBreakpoints(root instructions.Instruction) bool {
	r.bpMu.Lock()
	defer r.bpMu.Unlock()
	if len(r.breakpoints) == 0 {
		return false
	}
	for _, next := range instructions.NextLeaves(root) {
		for _, bp := range r.breakpoints {
			if bp.GetInstruction() != next {
				continue
			}
			switch bp.GetStatus() {
			case models.BreakpointSet:
				return true
			case models.BreakpointReleased:
				bp.SetStatus(models.BreakpointSet)
			}
		}
	}
	return false
}

// Halt sets the halt flag and recursively halts the tree; blocking leaves
// unblock within one polling slice.
func (r *Runner) Halt() {
	r.halt.Store(true)
	if root := r.rootInstruction(); root != nil {
		root.Halt()
	}
}

// IsHaltRequested reports whether Halt was called since the last Reset
func (r *Runner) IsHaltRequested() bool {
	return r.halt.Load()
}

// IsFinished reports whether the root reached Success or Failure
func (r *Runner) IsFinished() bool {
	root := r.rootInstruction()
	return root != nil && root.GetStatus().IsFinished()
}

// Succeeded reports whether the root finished with Success
func (r *Runner) Succeeded() bool {
	root := r.rootInstruction()
	return root != nil && root.GetStatus() == models.StatusSuccess
}

// IsRunning reports whether the root has actively running leaves
func (r *Runner) IsRunning() bool {
	root := r.rootInstruction()
	return root != nil && root.GetStatus() == models.StatusRunning
}

// Reset clears the halt flag and resets the instruction tree
func (r *Runner) Reset() error {
	root := r.rootInstruction()
	if root == nil {
		return fmt.Errorf("%w: runner has no procedure", models.ErrInvalidOperation)
	}
	r.halt.Store(false)
	root.Reset(r.ui)
	return nil
}

func (r *Runner) rootInstruction() instructions.Instruction {
	if r.proc == nil {
		return nil
	}
	return r.proc.RootInstruction()
}

// idleSleep waits DefaultSleepTime in halt-aware slices
func (r *Runner) idleSleep() {
	deadline := time.Now().Add(models.DefaultSleepTime)
	for !r.halt.Load() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		slice := models.TimingAccuracy
		if remaining < slice {
			slice = remaining
		}
		time.Sleep(slice)
	}
}
