// Package shutdownqueue collects cleanup tasks and drains them in LIFO
// order at the end of main:
//
//	shutdownqueue.Add(func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	...
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	_ = shutdownqueue.Shutdown(ctx)
//
// Tasks run once; panics are recovered; errors are aggregated with
// errors.Join. The package-level functions operate on a process-wide queue,
// and independent Queue values can be created for tests.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error if it
// cannot finish.
type Task func(ctx context.Context) error

type Queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
}

func New() *Queue {
	return &Queue{}
}

// Add registers a task to run on Shutdown, in LIFO order. Nil tasks and
// registrations after shutdown started are dropped.
func (q *Queue) Add(t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, t)
}

// Shutdown drains all registered tasks in LIFO order. Safe to call more than
// once; later calls are no-ops. If ctx expires mid-drain, Shutdown stops
// early and the context error joins any task errors collected so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil

	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}

var defaultQueue = New()

// Add registers a task on the process-wide queue.
func Add(t Task) { defaultQueue.Add(t) }

// Shutdown drains the process-wide queue.
func Shutdown(ctx context.Context) error { return defaultQueue.Shutdown(ctx) }
