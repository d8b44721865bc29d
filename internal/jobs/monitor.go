package jobs

import (
	"sync"
	"time"

	"github.com/ternarybob/oactree/internal/interfaces"
	"github.com/ternarybob/oactree/internal/models"
)

// SimpleJobStateMonitor records the latest job state and lets callers wait
// for specific states or any finished state. It ignores breakpoint and
// tick notifications.
type SimpleJobStateMonitor struct {
	mu    sync.Mutex
	cv    *sync.Cond
	state models.JobState
}

// NewSimpleJobStateMonitor creates a monitor in the Initial state
func NewSimpleJobStateMonitor() *SimpleJobStateMonitor {
	m := &SimpleJobStateMonitor{state: models.JobStateInitial}
	m.cv = sync.NewCond(&m.mu)
	return m
}

// OnStateChange records the new state and wakes waiters
func (m *SimpleJobStateMonitor) OnStateChange(state models.JobState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.cv.Broadcast()
}

// OnBreakpointChange is ignored
func (m *SimpleJobStateMonitor) OnBreakpointChange(instruction interfaces.InstructionRef, set bool) {
}

// OnProcedureTick is ignored
func (m *SimpleJobStateMonitor) OnProcedureTick() {}

// GetState returns the last recorded state
func (m *SimpleJobStateMonitor) GetState() models.JobState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// WaitForFinished blocks until the job reaches a finished state
func (m *SimpleJobStateMonitor) WaitForFinished() models.JobState {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.state.IsFinished() {
		m.cv.Wait()
	}
	return m.state
}

// WaitForState blocks until the given state is recorded or the timeout
// elapses.
func (m *SimpleJobStateMonitor) WaitForState(state models.JobState, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.state != state {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		// sync.Cond has no timed wait; poll in short slices
		m.mu.Unlock()
		slice := models.TimingAccuracy
		if remaining < slice {
			slice = remaining
		}
		time.Sleep(slice)
		m.mu.Lock()
	}
	return true
}
