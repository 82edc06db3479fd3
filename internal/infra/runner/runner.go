// Package runner implements the job queue and worker pool that execute
// UpdateRequests (spec §4.B, §5). It is the only place in this module that
// performs blocking network, filesystem, or subprocess I/O; the node tree
// and item store are mutated by callers applying a job's result on their own
// "main" context, never by a worker goroutine directly.
package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/transport"
	"feedcore/internal/observability/metrics"
	"feedcore/internal/resilience/circuitbreaker"
)

// MaxActiveJobs is the shared worker budget across both queues (spec §4.B:
// "a fixed maximum of 5 concurrent jobs").
const MaxActiveJobs = 5

// DefaultCmdTimeout is the wall-clock timeout for `|<shell-cmd>` jobs absent
// LIFEREA_FEED_CMD_TIMEOUT (spec §4.B.1).
const DefaultCmdTimeout = 60 * time.Second

// Runner is the two-priority FIFO worker pool. The zero value is not usable;
// construct with New.
type Runner struct {
	transport  *transport.HTTP
	breaker    *circuitbreaker.CircuitBreaker
	cmdTimeout time.Duration

	mu       sync.Mutex
	cond     *sync.Cond
	priority []*Job
	normal   []*Job
	byOwner  map[string][]*Job
	closed   bool

	nextID atomic.Uint64
	wg     sync.WaitGroup
}

// New returns a Runner with MaxActiveJobs workers already running. transport
// handles any request whose source is not a command, file, or gopher URL;
// cmdTimeout governs shell-command jobs (pass 0 to use DefaultCmdTimeout).
func New(transport *transport.HTTP, cmdTimeout time.Duration) *Runner {
	if cmdTimeout <= 0 {
		cmdTimeout = DefaultCmdTimeout
	}
	r := &Runner{
		transport:  transport,
		breaker:    circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		cmdTimeout: cmdTimeout,
		byOwner:    make(map[string][]*Job),
	}
	r.cond = sync.NewCond(&r.mu)
	for i := 0; i < MaxActiveJobs; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

// Submit enqueues req and returns immediately; cb runs once req's job
// completes, unless the job's owner is cancelled first (spec §4.B).
func (r *Runner) Submit(req *entity.UpdateRequest, priority bool, cb Callback) *Job {
	job := &Job{
		ID:       r.nextID.Add(1),
		Owner:    req.Owner,
		Priority: priority,
		Request:  req,
		Callback: cb,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if priority {
		r.priority = append(r.priority, job)
	} else {
		r.normal = append(r.normal, job)
	}
	if job.Owner != "" {
		r.byOwner[job.Owner] = append(r.byOwner[job.Owner], job)
	}
	r.cond.Signal()
	r.reportQueueDepthLocked()
	metrics.RecordJobSubmitted(kindOf(req.Source))
	return job
}

// reportQueueDepthLocked publishes the current depth of both priority lanes.
// Callers must hold r.mu.
func (r *Runner) reportQueueDepthLocked() {
	metrics.UpdateJobQueueDepth("priority", len(r.priority))
	metrics.UpdateJobQueueDepth("normal", len(r.normal))
}

// CancelByOwner detaches the callback from every pending or running job
// sharing owner (spec §4.B, §5). Pending jobs are dropped from their queue
// outright; running jobs are marked cancelled and, for command jobs, their
// child process is killed. A job's own work may still finish internally but
// its result is discarded.
func (r *Runner) CancelByOwner(owner string) {
	if owner == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, job := range r.byOwner[owner] {
		job.cancel()
	}
	delete(r.byOwner, owner)

	r.priority = dropOwner(r.priority, owner)
	r.normal = dropOwner(r.normal, owner)
}

func dropOwner(queue []*Job, owner string) []*Job {
	kept := queue[:0]
	for _, job := range queue {
		if job.Owner == owner {
			continue
		}
		kept = append(kept, job)
	}
	return kept
}

// Close stops accepting new dispatch and waits for in-flight workers to
// drain. Already-queued jobs whose owners were never cancelled still run to
// completion; their callbacks still fire.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.cond.Broadcast()
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) work() {
	defer r.wg.Done()
	for {
		job := r.dequeue()
		if job == nil {
			return
		}
		r.finish(job)

		kind := kindOf(job.Request.Source)
		start := time.Now()
		result, err := r.execute(job)
		metrics.RecordJobDuration(kind, time.Since(start), err != nil)

		if !job.isCancelled() && job.Callback != nil {
			job.Callback(result, err)
		}
	}
}

// dequeue blocks until a job is available or the runner is closed and
// drained. The priority queue is always preferred (spec §4.B).
func (r *Runner) dequeue() *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.priority) == 0 && len(r.normal) == 0 {
		if r.closed {
			return nil
		}
		r.cond.Wait()
	}
	var job *Job
	if len(r.priority) > 0 {
		job = r.priority[0]
		r.priority = r.priority[1:]
	} else {
		job = r.normal[0]
		r.normal = r.normal[1:]
	}
	r.reportQueueDepthLocked()
	return job
}

// finish removes job from the owner-lookup table used by CancelByOwner; it
// is called as soon as a job starts executing, since a running job is
// cancelled via its own cmd handle rather than queue removal.
func (r *Runner) finish(job *Job) {
	if job.Owner == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := r.byOwner[job.Owner]
	for i, candidate := range jobs {
		if candidate == job {
			r.byOwner[job.Owner] = append(jobs[:i], jobs[i+1:]...)
			break
		}
	}
	if len(r.byOwner[job.Owner]) == 0 {
		delete(r.byOwner, job.Owner)
	}
}

// execute dispatches job by inspecting its request source and runs any
// configured post-filter on a successful result (spec §4.B).
func (r *Runner) execute(job *Job) (*entity.UpdateResult, error) {
	if job.isCancelled() {
		return nil, context.Canceled
	}

	ctx := context.Background()
	result, err := r.dispatch(ctx, job)
	if err != nil {
		return result, err
	}
	if result != nil && job.Request.FilterCmd != "" && result.Success() {
		applyFilter(result, job.Request.FilterCmd)
	}
	return result, nil
}
