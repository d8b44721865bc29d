package jobs

import (
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/anyvalue"
	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
	"github.com/ternarybob/oactree/internal/procedure"
	"github.com/ternarybob/oactree/internal/workspace"
)

// LocalJob is the in-process Job implementation: it owns a procedure, an
// AsyncRunner and the job map translating external indices.
type LocalJob struct {
	id      string
	proc    *procedure.Procedure
	jobMap  *JobMap
	info    models.JobInfo
	async   *AsyncRunner
	adapter *JobInterfaceAdapter
	logger  arbor.ILogger
}

// NewLocalJob builds a job over a parsed (not yet set up) procedure,
// publishing through the given JobInterface.
func NewLocalJob(proc *procedure.Procedure, jobIface interfaces.JobInterface,
	logger arbor.ILogger) (*LocalJob, error) {
	jobMap, err := NewJobMap(proc)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	info, err := BuildJobInfo(id, proc, jobMap)
	if err != nil {
		return nil, err
	}
	job := &LocalJob{
		id:     id,
		proc:   proc,
		jobMap: jobMap,
		info:   info,
		logger: logger,
	}
	job.hookVariableUpdates(jobIface)
	job.async, err = NewAsyncRunner(proc, jobIface, jobIface, logger)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// NewLocalJobForIO builds a job publishing through an index-based
// JobInfoIO observation surface.
func NewLocalJobForIO(proc *procedure.Procedure, io interfaces.JobInfoIO,
	logger arbor.ILogger) (*LocalJob, error) {
	jobMap, err := NewJobMap(proc)
	if err != nil {
		return nil, err
	}
	adapter := NewJobInterfaceAdapter(io, jobMap, logger)
	id := uuid.NewString()
	info, err := BuildJobInfo(id, proc, jobMap)
	if err != nil {
		adapter.Close()
		return nil, err
	}
	job := &LocalJob{
		id:      id,
		proc:    proc,
		jobMap:  jobMap,
		info:    info,
		adapter: adapter,
		logger:  logger,
	}
	job.hookVariableUpdates(adapter)
	job.async, err = NewAsyncRunner(proc, adapter, adapter, logger)
	if err != nil {
		adapter.Close()
		return nil, err
	}
	return job, nil
}

// hookVariableUpdates forwards workspace changes to the user interface
func (j *LocalJob) hookVariableUpdates(ui interfaces.UserInterface) {
	_ = j.proc.Workspace().RegisterGenericCallback(
		func(name string, value anyvalue.AnyValue, connected bool) {
			ui.VariableUpdated(name, value, connected)
		}, j)
}

// ID returns the job's unique identifier
func (j *LocalJob) ID() string { return j.id }

// GetInfo returns the static job description
func (j *LocalJob) GetInfo() models.JobInfo {
	return j.info
}

// SetBreakpoint marks the instruction with the given BFS index. Unknown
// indices are logged and ignored.
func (j *LocalJob) SetBreakpoint(instructionIdx uint32) {
	instr, err := j.jobMap.InstructionAt(instructionIdx)
	if err != nil {
		j.logger.Warn().Err(err).Int("index", int(instructionIdx)).
			Msg("SetBreakpoint with unknown instruction index ignored")
		return
	}
	j.async.SetBreakpoint(instr)
}

// RemoveBreakpoint removes the marker for the given BFS index
func (j *LocalJob) RemoveBreakpoint(instructionIdx uint32) {
	instr, err := j.jobMap.InstructionAt(instructionIdx)
	if err != nil {
		j.logger.Warn().Err(err).Int("index", int(instructionIdx)).
			Msg("RemoveBreakpoint with unknown instruction index ignored")
		return
	}
	j.async.RemoveBreakpoint(instr)
}

// Start runs the procedure
func (j *LocalJob) Start() { j.async.Start() }

// Step performs a single tick
func (j *LocalJob) Step() { j.async.Step() }

// Pause suspends execution at the next tick boundary
func (j *LocalJob) Pause() { j.async.Pause() }

// Reset returns the job to Initial
func (j *LocalJob) Reset() { j.async.Reset() }

// Halt stops the job
func (j *LocalJob) Halt() { j.async.Halt() }

// Close terminates the worker resources; safe without a prior Start
func (j *LocalJob) Close() {
	j.async.Close()
	j.proc.Workspace().UnregisterListener(j)
	if j.adapter != nil {
		j.adapter.Close()
	}
}

// GetState returns the current job state
func (j *LocalJob) GetState() models.JobState {
	return j.async.GetState()
}

// Workspace exposes the procedure workspace for observers
func (j *LocalJob) Workspace() *workspace.Workspace {
	return j.proc.Workspace()
}
