package notify

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrWorkerStopped is returned when submitting to a stopped worker.
	ErrWorkerStopped = errors.New("notify: worker stopped")

	// ErrQueueFull is returned when a worker's task queue is full.
	ErrQueueFull = errors.New("notify: worker queue full")
)

// Task is work run on a worker goroutine.
type Task func(ctx context.Context)

type job struct {
	msg  Message
	task Task
}

// Worker runs tasks on its own goroutine and posts a Message to its
// Coordinator after each one.
type Worker struct {
	c     *Coordinator
	tasks chan job
	done  chan struct{}

	mu      sync.Mutex
	stopped bool
}

func (c *Coordinator) newWorker() *Worker {
	return &Worker{
		c:     c,
		tasks: make(chan job, defaultQueueSize),
		done:  make(chan struct{}),
	}
}

// Submit queues task as work item id of ws. It never blocks: a full queue
// fails with ErrQueueFull.
func (w *Worker) Submit(ws WorkspaceID, id WorkID, task Task) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrWorkerStopped
	}
	select {
	case w.tasks <- job{msg: Message{Workspace: ws, WorkID: id}, task: task}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop lets queued tasks finish and waits for the worker to exit.
func (w *Worker) Stop() {
	w.closeQueue()
	<-w.done
}

func (w *Worker) closeQueue() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stopped {
		w.stopped = true
		close(w.tasks)
	}
}

// Done is closed once the worker has exited.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) run(ctx context.Context) error {
	defer close(w.done)
	for {
		select {
		case j, ok := <-w.tasks:
			if !ok {
				return nil
			}
			j.task(ctx)
			if err := w.c.post(ctx, j.msg); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
