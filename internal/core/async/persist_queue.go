package async

import (
	"context"
	"sync"
	"time"

	"log/slog"
)

// PersistQueue saves extraction results in the background with a fixed pool
// of workers, so request handlers never wait on the database.
type PersistQueue struct {
	saver   Saver
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// done is closed by Shutdown to release blocked senders; ch is closed
	// only after every in-flight Enqueue has returned.
	done    chan struct{}
	senders sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

type Option func(*PersistQueue)

func WithWorkers(n int) Option {
	return func(q *PersistQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *PersistQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithTimeout(d time.Duration) Option {
	return func(q *PersistQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewPersistQueue(saver Saver, logger *slog.Logger, opts ...Option) *PersistQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &PersistQueue{
		saver:   saver,
		logger:  logger,
		workers: 2,
		timeout: 30 * time.Second,
		ch:      make(chan Job, 64),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *PersistQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					numero := job.Result.Informe.NumeroEnsayo
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					err := q.saver.Upsert(ctx, job.Result)
					cancel()

					if err != nil {
						q.logger.Error("persist failed", "worker_id", workerID, "numero_ensayo", numero, "request_id", job.RequestID, "error", err)
					} else {
						q.logger.Info("persisted informe", "worker_id", workerID, "numero_ensayo", numero,
							"request_id", job.RequestID, "queued_ms", time.Since(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue hands job to the workers. When the buffer is full it waits for room,
// for ctx to end, or for Shutdown. The mutex guards sender registration only.
func (q *PersistQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "numero_ensayo", job.Result.Informe.NumeroEnsayo)
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued informe for persistence", "numero_ensayo", job.Result.Informe.NumeroEnsayo)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "numero_ensayo", job.Result.Informe.NumeroEnsayo)
	select {
	case q.ch <- job:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish, or for
// ctx to end.
func (q *PersistQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)

	drained := make(chan struct{})
	go func() { defer close(drained); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-drained:
		q.logger.Info("queue drained, shutdown complete")
	}
}
