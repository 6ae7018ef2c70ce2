// Package inmemory provides a channel-backed advisory queue suitable for
// single-instance deployments. A multi-instance deployment would swap in a
// broker-backed implementation behind the same interfaces.
package inmemory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/finwise/finwise-backend/internal/jobs"
	"github.com/google/uuid"
)

var ErrQueueClosed = errors.New("queue is closed")

// ErrQueueFull is returned instead of blocking the publishing request; a
// dropped advisory job only means an annotation goes missing, never a wrong
// ledger total.
var ErrQueueFull = errors.New("queue is full")

// Queue is an in-memory implementation of jobs.Publisher and jobs.Consumer.
// It is safe for concurrent use.
type Queue struct {
	jobChan   chan *jobs.AdvisoryJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	workers   int
	closed    bool
}

// NewQueue creates a queue holding up to bufferSize pending jobs, drained by
// workerCount concurrent workers.
func NewQueue(bufferSize, workerCount int) *Queue {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	if workerCount <= 0 {
		workerCount = 2
	}
	return &Queue{
		jobChan:   make(chan *jobs.AdvisoryJob, bufferSize),
		closeChan: make(chan struct{}),
		workers:   workerCount,
	}
}

// Publish implements jobs.Publisher. It never blocks on a full buffer.
func (q *Queue) Publish(ctx context.Context, job *jobs.AdvisoryJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Start implements jobs.Consumer. The handler runs concurrently, one job per
// worker at a time; handler errors are the handler's problem to log.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			// Drain what is already queued before exiting.
			for {
				select {
				case job := <-q.jobChan:
					_ = handler(ctx, job)
				default:
					return
				}
			}
		case job := <-q.jobChan:
			_ = handler(ctx, job)
		}
	}
}

// Stop implements jobs.Consumer. It stops accepting jobs and waits for
// in-flight work, bounded by ctx.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements jobs.Publisher
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
