package service

import (
	"log/slog"
	"sync"
)

// serialExecutor runs tasks one at a time in submission order.
//
// The goroutine that posts into an idle executor drains the queue itself. Tasks
// posted while a drain is in progress, including tasks posted by a running task,
// are appended and run by the draining goroutine after the current task returns.
// A task therefore never runs re-entrantly inside another task.
type serialExecutor struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []func()
	running bool
	closed  bool
}

func newSerialExecutor(logger *slog.Logger) *serialExecutor {
	return &serialExecutor{logger: logger}
}

// Post queues task. It runs before Post returns unless another goroutine is draining.
func (e *serialExecutor) Post(task func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.logger.Debug("task dropped, executor closed")
		return
	}
	e.queue = append(e.queue, task)
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true

	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()

		e.run(next)

		e.mu.Lock()
	}
	e.running = false
	e.mu.Unlock()
}

// Close drops queued tasks and rejects new ones.
func (e *serialExecutor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.queue = nil
}

func (e *serialExecutor) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task panicked", slog.Any("panic", r))
		}
	}()
	task()
}
