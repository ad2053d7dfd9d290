// Package pipeline implements the pipeline coordinator: four named
// work queues (check-updates, check-orcidid, match-claim, output-results)
// that carry the system from an external update notification through to a
// persisted, dispatched claim.
package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// ErrQueueFull is returned by TryEnqueue when the queue's buffer has no
// free slot for more work.
var ErrQueueFull = errors.New("pipeline: queue full")

// Job is one unit of queue work. Delayed self-rescheduled retries pass
// their delay to EnqueueDelayed; the Job itself carries none.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue is a bounded worker pool draining a single named channel. Workers
// are conc.WaitGroup goroutines so a panicking task surfaces on Wait
// instead of silently killing a worker.
type Queue struct {
	name        string
	jobs        chan Job
	wg          conc.WaitGroup
	closeOnce   sync.Once
	onTaskError func(queue, task string, err error)

	// afterFunc schedules a delayed call; defaults to time.AfterFunc.
	// Tests in this package override it to observe scheduled delays
	// without waiting for them to fire.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewQueue starts concurrency workers draining the queue immediately.
func NewQueue(name string, concurrency int, onTaskError func(queue, task string, err error)) *Queue {
	if concurrency <= 0 {
		concurrency = 1
	}
	q := &Queue{
		name:        name,
		jobs:        make(chan Job, concurrency*4),
		onTaskError: onTaskError,
		afterFunc:   time.AfterFunc,
	}
	for i := 0; i < concurrency; i++ {
		q.wg.Go(q.worker)
	}
	return q
}

func (q *Queue) worker() {
	for job := range q.jobs {
		if err := job.Run(context.Background()); err != nil {
			if q.onTaskError != nil {
				q.onTaskError(q.name, job.Name, err)
			} else {
				log.Printf("pipeline: queue=%s task=%s failed: %v", q.name, job.Name, err)
			}
		}
	}
}

// Enqueue submits a job for immediate processing. Per the backpressure
// policy, a full channel blocks the caller rather than dropping work; CLI
// callers retry once after a short sleep on enqueue failure, but a
// buffered channel send here never fails outright.
func (q *Queue) Enqueue(job Job) {
	q.jobs <- job
}

// TryEnqueue submits a job without blocking, returning ErrQueueFull if
// the buffer is saturated. The CLI driver uses this to implement the
// backpressure policy: retry once after a short sleep before surfacing
// the error to the operator.
func (q *Queue) TryEnqueue(job Job) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// EnqueueDelayed submits a job after delay elapses. Used for
// check-updates' self-reschedule and check-updates' linear backoff.
func (q *Queue) EnqueueDelayed(job Job, delay time.Duration) {
	if delay <= 0 {
		q.Enqueue(job)
		return
	}
	q.afterFunc(delay, func() { q.Enqueue(job) })
}

// Close stops accepting new immediate work and waits for in-flight jobs to
// drain. Close does not stop timers still pending from EnqueueDelayed.
// Their jobs are held only in memory, so a restart does not redeliver
// them.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.jobs) })
	q.wg.Wait()
}
