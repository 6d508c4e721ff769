package ai

import (
	"context"
	"sync"
)

// TaskRunner enforces at most one in-flight request per task name. Starting a
// task cancels the previous one under the same name, so a user clicking
// "summarize" twice never races two generations into the same output slot.
type TaskRunner struct {
	mu    sync.Mutex
	tasks map[string]*task
}

type task struct {
	cancel context.CancelFunc
}

func NewTaskRunner() *TaskRunner {
	return &TaskRunner{tasks: make(map[string]*task)}
}

// Start runs fn in a new goroutine under the given task name, canceling any
// task currently registered under that name first. fn must return when its
// context is canceled.
func (r *TaskRunner) Start(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(ctx)
	t := &task{cancel: cancel}

	r.mu.Lock()
	if prev, ok := r.tasks[name]; ok {
		prev.cancel()
	}
	r.tasks[name] = t
	r.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			// Only deregister if no newer task replaced this one.
			if r.tasks[name] == t {
				delete(r.tasks, name)
			}
			r.mu.Unlock()
		}()
		fn(ctx)
	}()
}

// Cancel stops the task registered under the name, if any, and removes it
// immediately so a new task can start right away.
func (r *TaskRunner) Cancel(name string) {
	r.mu.Lock()
	t, ok := r.tasks[name]
	if ok {
		delete(r.tasks, name)
	}
	r.mu.Unlock()
	if ok {
		t.cancel()
	}
}

// Active reports whether a task is registered under the name.
func (r *TaskRunner) Active(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[name]
	return ok
}
