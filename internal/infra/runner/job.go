package runner

import (
	"os/exec"
	"sync"

	"feedcore/internal/domain/entity"
)

// Callback is invoked exactly once when a job completes, on whatever
// goroutine the caller designates as its "main" context (spec §4.B, §5:
// "workers marshal a completed result to the main context"). It is never
// invoked for a job cancelled via CancelByOwner.
type Callback func(*entity.UpdateResult, error)

// Job is one unit of queued work. Owner is the cancellation handle shared
// with entity.UpdateRequest.Owner; Priority selects which of the two FIFO
// queues the job enters (spec §4.B).
type Job struct {
	ID       uint64
	Owner    string
	Priority bool
	Request  *entity.UpdateRequest
	Callback Callback

	mu        sync.Mutex
	cancelled bool
	cmd       *exec.Cmd
}

func (j *Job) cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancelled = true
	if j.cmd != nil && j.cmd.Process != nil {
		// Best effort: the process may have already exited between the
		// cancel request and this kill (spec §5: "reaps it").
		_ = j.cmd.Process.Kill()
	}
}

func (j *Job) isCancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}

func (j *Job) setCmd(cmd *exec.Cmd) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cmd = cmd
}

func (j *Job) clearCmd() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cmd = nil
}
