package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Task represents a unit of work to be processed by the worker pool
type Task func(ctx context.Context) error

var ErrPoolClosed = errors.New("worker pool closed")

// WorkerPool runs notification tasks off the request path.
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
	closeMux    sync.RWMutex
	logger      *slog.Logger
}

// NewWorkerPool creates a pool with specified number of workers
func NewWorkerPool(workerCount int, logger *slog.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*16),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.logger.Info("worker_pool_started", "workers", wp.workerCount)
}

// Submit queues task. It blocks while the queue is full, until ctx ends or the pool shuts down.
func (wp *WorkerPool) Submit(ctx context.Context, task Task) error {
	wp.closeMux.RLock()
	defer wp.closeMux.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case wp.taskQueue <- task:
		return nil
	case <-wp.ctx.Done():
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait stops accepting tasks and blocks until the queued ones complete.
func (wp *WorkerPool) Wait() {
	wp.closeMux.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.closeMux.Unlock()

	wp.wg.Wait()
	wp.logger.Info("worker_pool_drained")
}

// Shutdown cancels running tasks and waits for the workers to exit.
func (wp *WorkerPool) Shutdown() {
	wp.cancel()
	wp.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug("worker_cancelled", "worker", id)
			return
		default:
		}

		if err := task(wp.ctx); err != nil {
			wp.logger.Warn("worker_task_failed", "worker", id, "error", err)
		}
	}
}
