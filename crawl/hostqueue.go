package crawl

import (
	"context"
	"sync"
)

// HostQueue admits jobs for a single host onto a shared Pool, never letting
// more than its limit of them be queued or running in the pool at once.
// Jobs beyond the limit wait in a FIFO and are admitted in submission order.
// Each HostQueue has its own lock, so hosts never contend with each other.
type HostQueue struct {
	host  string
	limit int
	pool  *Pool

	mu      sync.Mutex
	pending []Job
	running int
}

// NewHostQueue returns a queue admitting at most limit jobs of host onto pool.
func NewHostQueue(host string, limit int, pool *Pool) *HostQueue {
	return &HostQueue{host: host, limit: limit, pool: pool}
}

// Host returns the host the queue admits jobs for.
func (q *HostQueue) Host() string {
	return q.host
}

// Submit appends job to the FIFO and admits jobs from its head while under
// the limit. If the pool rejects a job it is cancelled.
func (q *HostQueue) Submit(job Job) {
	q.mu.Lock()
	q.pending = append(q.pending, job)
	rejected := q.admitLocked()
	q.mu.Unlock()

	cancelJobs(rejected)
}

// Pending returns the number of jobs waiting for admission.
func (q *HostQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Running returns the number of admitted jobs that have not finished.
func (q *HostQueue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// admitLocked moves jobs from the FIFO head onto the pool while under the
// limit and returns the jobs the pool refused.
func (q *HostQueue) admitLocked() []Job {
	var rejected []Job
	for q.running < q.limit && len(q.pending) > 0 {
		job := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]

		if err := q.pool.Submit(&admittedJob{queue: q, job: job}); err != nil {
			rejected = append(rejected, job)
			continue
		}
		q.running++
	}
	return rejected
}

// release frees the slot of a finished job and admits the next one.
// The next job is handed to the pool rather than run inline, so long
// backlogs do not grow the stack.
func (q *HostQueue) release() {
	q.mu.Lock()
	q.running--
	rejected := q.admitLocked()
	q.mu.Unlock()

	cancelJobs(rejected)
}

// admittedJob holds a HostQueue slot for the lifetime of job.
type admittedJob struct {
	queue *HostQueue
	job   Job
}

func (j *admittedJob) Run(ctx context.Context) {
	defer j.queue.release()
	j.job.Run(ctx)
}

func (j *admittedJob) Cancel() {
	defer j.queue.release()
	j.job.Cancel()
}

func cancelJobs(jobs []Job) {
	for _, job := range jobs {
		job.Cancel()
	}
}
