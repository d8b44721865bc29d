package jobs

import (
	"sync"

	"github.com/ternarybob/oactree/internal/models"
)

// CommandQueue is the threadsafe FIFO of job commands consumed by the
// AsyncRunner worker. PriorityPush lets high-ranked commands (Halt,
// Terminate) jump the queue.
type CommandQueue struct {
	mu    sync.Mutex
	cv    *sync.Cond
	queue []models.JobCommand
}

// NewCommandQueue creates an empty queue
func NewCommandQueue() *CommandQueue {
	q := &CommandQueue{}
	q.cv = sync.NewCond(&q.mu)
	return q
}

// Push appends a command
func (q *CommandQueue) Push(cmd models.JobCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, cmd)
	q.cv.Signal()
}

// PriorityPush inserts the command at the front iff the queue is empty or
// the current front has strictly lower rank, running fn atomically with
// the insert. It reports whether the command was pushed.
func (q *CommandQueue) PriorityPush(cmd models.JobCommand, fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) > 0 && q.queue[0] >= cmd {
		return false
	}
	if fn != nil {
		fn()
	}
	q.queue = append([]models.JobCommand{cmd}, q.queue...)
	q.cv.Signal()
	return true
}

// IsEmpty reports whether the queue holds no commands
func (q *CommandQueue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue) == 0
}

// Size returns the number of queued commands
func (q *CommandQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// TryPop pops the front command without blocking
func (q *CommandQueue) TryPop() (models.JobCommand, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == 0 {
		return 0, false
	}
	cmd := q.queue[0]
	q.queue = q.queue[1:]
	return cmd, true
}

// WaitForNext blocks until a command can be popped
func (q *CommandQueue) WaitForNext() models.JobCommand {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.queue) == 0 {
		q.cv.Wait()
	}
	cmd := q.queue[0]
	q.queue = q.queue[1:]
	return cmd
}
