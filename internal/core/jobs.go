package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StatusWriter persists a user's presence status. The hub calls it off the
// delivery path; failures are logged and never undo the in-memory transition.
type StatusWriter interface {
	SetUserStatus(ctx context.Context, user UserID, status Status) error
}

// MessageSink receives delivered chat messages for archival.
type MessageSink interface {
	Archive(ctx context.Context, msg Message) error
}

const (
	defaultJobQueueSize = 256
	defaultJobTimeout   = 5 * time.Second
	// defaultDrainGrace bounds how long shutdown waits for queued jobs.
	defaultDrainGrace = 3 * time.Second
)

type job struct {
	name string
	user UserID
	fn   func(ctx context.Context) error
}

// jobQueue runs side effects one at a time, in submission order, on its own
// goroutine. Submitting never blocks: a full queue drops the job. Only the hub
// goroutine enqueues and closes, so enqueue never races with close.
type jobQueue struct {
	name    string
	jobs    chan job
	done    chan struct{}
	timeout time.Duration
	log     *zerolog.Logger
}

func newJobQueue(name string, size int, timeout time.Duration, logger *zerolog.Logger) *jobQueue {
	if size <= 0 {
		size = defaultJobQueueSize
	}
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &jobQueue{
		name:    name,
		jobs:    make(chan job, size),
		done:    make(chan struct{}),
		timeout: timeout,
		log:     logger,
	}
}

func (q *jobQueue) enqueue(j job) bool {
	select {
	case q.jobs <- j:
		return true
	default:
		q.log.Warn().Str("queue", q.name).Str("job", j.name).Str("user_id", string(j.user)).Msg("job queue full, dropping")
		return false
	}
}

// run executes jobs until the queue is closed and empty.
func (q *jobQueue) run() {
	defer close(q.done)
	for j := range q.jobs {
		q.exec(j)
	}
}

// drain closes the queue and waits up to grace for the pending jobs. It
// reports whether every job ran.
func (q *jobQueue) drain(grace time.Duration) bool {
	close(q.jobs)
	select {
	case <-q.done:
		return true
	case <-time.After(grace):
		q.log.Warn().Str("queue", q.name).Int("pending", len(q.jobs)).Msg("shutdown grace elapsed, abandoning jobs")
		return false
	}
}

func (q *jobQueue) exec(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := j.fn(ctx); err != nil {
		q.log.Warn().Err(err).Str("queue", q.name).Str("job", j.name).Str("user_id", string(j.user)).Msg("job failed")
	}
}
