package jobs

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/instructions"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/procedure"
	"github.com/ternarybob/oactree/internal/runner"
)

// workerAction tells the execution loop what to do after a command.
type workerAction int

const (
	actionContinue workerAction = iota
	actionStep
	actionRun
	actionExit
)

// AsyncRunner drives one procedure on a dedicated worker goroutine,
// consuming the job command queue and publishing job states through the
// monitor. The worker is the only goroutine that calls into the Runner.
type AsyncRunner struct {
	proc    *procedure.Procedure
	ui      interfaces.UserInterface
	monitor interfaces.JobStateMonitor
	runner  *runner.Runner
	queue   *CommandQueue
	logger  arbor.ILogger

	state     atomic.Uint32
	done      chan struct{}
	closeOnce sync.Once
}

// NewAsyncRunner sets up the procedure (which must not be set up yet) and
// starts the worker. Setup failures are returned and no worker is started.
func NewAsyncRunner(proc *procedure.Procedure, ui interfaces.UserInterface,
	monitor interfaces.JobStateMonitor, logger arbor.ILogger) (*AsyncRunner, error) {
	a := &AsyncRunner{
		proc:    proc,
		ui:      ui,
		monitor: monitor,
		runner:  runner.New(ui),
		queue:   NewCommandQueue(),
		logger:  logger,
		done:    make(chan struct{}),
	}
	a.runner.SetTickCallback(func() {
		a.monitor.OnProcedureTick()
	})
	a.runner.SetBreakpointCallback(func(instr instructions.Instruction, set bool) {
		a.monitor.OnBreakpointChange(instr, set)
	})
	if err := a.runner.SetProcedure(proc); err != nil {
		return nil, err
	}
	a.setState(models.JobStateInitial)
	go a.executionLoop()
	return a, nil
}

// GetState returns the current job state
func (a *AsyncRunner) GetState() models.JobState {
	return models.JobState(a.state.Load())
}

func (a *AsyncRunner) setState(state models.JobState) {
	a.state.Store(uint32(state))
	a.monitor.OnStateChange(state)
}

// SetBreakpoint marks an instruction; effective before its next tick
func (a *AsyncRunner) SetBreakpoint(instr instructions.Instruction) {
	a.runner.SetBreakpoint(instr)
}

// RemoveBreakpoint removes an instruction's marker
func (a *AsyncRunner) RemoveBreakpoint(instr instructions.Instruction) {
	a.runner.RemoveBreakpoint(instr)
}

// Start runs the procedure continuously if the state allows it
func (a *AsyncRunner) Start() {
	a.queue.Push(models.CommandStart)
}

// Step executes a single tick if the state allows it
func (a *AsyncRunner) Step() {
	a.queue.Push(models.CommandStep)
}

// Pause suspends execution at the next tick boundary
func (a *AsyncRunner) Pause() {
	a.queue.Push(models.CommandPause)
}

// Reset tears the procedure down and back up, re-entering Initial
func (a *AsyncRunner) Reset() {
	a.queue.Push(models.CommandReset)
}

// Halt stops the procedure; it cannot be continued without Reset. The
// runner's halt flag is raised synchronously so blocking leaves unblock
// immediately.
func (a *AsyncRunner) Halt() {
	if !a.queue.PriorityPush(models.CommandHalt, func() { a.runner.Halt() }) {
		a.queue.Push(models.CommandHalt)
	}
}

// Close terminates the worker; callable even if Start was never called.
func (a *AsyncRunner) Close() {
	a.closeOnce.Do(func() {
		if !a.queue.PriorityPush(models.CommandTerminate, func() { a.runner.Halt() }) {
			a.queue.Push(models.CommandTerminate)
		}
		<-a.done
	})
}

func (a *AsyncRunner) executionLoop() {
	defer close(a.done)
	for {
		cmd := a.queue.WaitForNext()
		switch a.handleCommand(cmd) {
		case actionRun:
			a.runProcedure()
		case actionStep:
			a.stepProcedure()
		case actionExit:
			a.terminate()
			return
		}
	}
}

// handleCommand dispatches on the current state, mirroring the job state
// machine table.
func (a *AsyncRunner) handleCommand(cmd models.JobCommand) workerAction {
	if cmd == models.CommandTerminate {
		return actionExit
	}
	switch a.GetState() {
	case models.JobStateInitial:
		return a.handleInitial(cmd)
	case models.JobStatePaused:
		return a.handlePaused(cmd)
	case models.JobStateSucceeded, models.JobStateFailed, models.JobStateHalted:
		return a.handleFinished(cmd)
	default:
		// Running/Stepping states consume commands inside their own loops
		return actionContinue
	}
}

func (a *AsyncRunner) handleInitial(cmd models.JobCommand) workerAction {
	switch cmd {
	case models.CommandStart:
		a.setState(models.JobStateRunning)
		return actionRun
	case models.CommandStep:
		a.setState(models.JobStateStepping)
		return actionStep
	case models.CommandHalt:
		a.setState(models.JobStateHalted)
	}
	return actionContinue
}

func (a *AsyncRunner) handlePaused(cmd models.JobCommand) workerAction {
	switch cmd {
	case models.CommandStart:
		a.setState(models.JobStateRunning)
		return actionRun
	case models.CommandStep:
		a.setState(models.JobStateStepping)
		return actionStep
	case models.CommandReset:
		a.resetProcedure()
	case models.CommandHalt:
		a.runner.Halt()
		a.setState(models.JobStateHalted)
	}
	return actionContinue
}

func (a *AsyncRunner) handleFinished(cmd models.JobCommand) workerAction {
	if cmd == models.CommandReset {
		a.resetProcedure()
	}
	return actionContinue
}

// runProcedure ticks until finished, paused, halted or stalled on a
// breakpoint, polling the command queue between ticks. Reset commands
// arriving while running are deferred until the loop exits.
func (a *AsyncRunner) runProcedure() {
	var deferred []models.JobCommand
	defer func() {
		for _, cmd := range deferred {
			a.queue.Push(cmd)
		}
	}()

	for {
		if cmd, ok := a.queue.TryPop(); ok {
			switch cmd {
			case models.CommandPause:
				a.setState(models.JobStatePaused)
				return
			case models.CommandHalt:
				a.runner.Halt()
				// one last tick lets started leaves observe the halt and finish
				if root := a.proc.RootInstruction(); root != nil {
					if s := root.GetStatus(); s != models.StatusNotStarted && !s.IsFinished() {
						root.ExecuteSingle(a.ui, a.proc.Workspace())
					}
				}
				a.setState(models.JobStateHalted)
				return
			case models.CommandTerminate:
				a.queue.PriorityPush(models.CommandTerminate, nil)
				a.runner.Halt()
				a.setState(models.JobStateHalted)
				return
			case models.CommandReset:
				deferred = append(deferred, cmd)
			}
		}

		result := a.runner.ExecuteSingle()
		switch result {
		case runner.TickBreakpoint:
			a.setState(models.JobStatePaused)
			return
		case runner.TickHalted:
			a.setState(models.JobStateHalted)
			return
		}
		if a.runner.IsFinished() {
			a.switchStateOnFinished()
			return
		}
		if !a.runner.IsRunning() {
			a.commandAwareSleep()
		}
	}
}

// stepProcedure performs one tick and parks in Paused (or a finished
// state).
func (a *AsyncRunner) stepProcedure() {
	result := a.runner.ExecuteSingle()
	if result == runner.TickHalted || a.runner.IsHaltRequested() {
		a.setState(models.JobStateHalted)
		return
	}
	if a.runner.IsFinished() {
		a.switchStateOnFinished()
		return
	}
	a.setState(models.JobStatePaused)
}

func (a *AsyncRunner) switchStateOnFinished() {
	switch {
	case a.runner.IsHaltRequested():
		a.setState(models.JobStateHalted)
	case a.runner.Succeeded():
		a.setState(models.JobStateSucceeded)
	default:
		a.setState(models.JobStateFailed)
	}
}

func (a *AsyncRunner) resetProcedure() {
	if err := a.runner.Reset(); err != nil {
		a.logger.Warn().Err(err).Msg("Job reset failed")
		return
	}
	a.proc.Teardown()
	if err := a.proc.Setup(); err != nil {
		a.logger.Warn().Err(err).Msg("Procedure setup failed during job reset")
		a.setState(models.JobStateFailed)
		return
	}
	a.setState(models.JobStateInitial)
}

func (a *AsyncRunner) terminate() {
	if a.GetState() == models.JobStateRunning || a.GetState() == models.JobStateStepping {
		a.runner.Halt()
	}
	a.proc.Teardown()
}

// commandAwareSleep idles briefly between ticks, waking early for new
// commands or halt.
func (a *AsyncRunner) commandAwareSleep() {
	deadline := time.Now().Add(models.DefaultSleepTime)
	for a.queue.IsEmpty() && !a.runner.IsHaltRequested() {
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
