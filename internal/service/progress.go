package service

import (
	"sync"
	"time"
)

// progressRun is the cancellation token of one sampling loop.
type progressRun struct {
	done chan struct{}
}

// progressEmitter samples playback position on a ticker while playing.
//
// At most one loop runs at a time. Stop cancels the current loop synchronously:
// ticks from a cancelled loop that were already posted are dropped because their
// token is no longer current.
type progressEmitter struct {
	interval time.Duration
	post     func(func())
	emit     func()

	mu      sync.Mutex
	current *progressRun
	closed  bool
	wg      sync.WaitGroup
}

func newProgressEmitter(interval time.Duration, post func(func()), emit func()) *progressEmitter {
	return &progressEmitter{
		interval: interval,
		post:     post,
		emit:     emit,
	}
}

// Start arms a sampling loop unless one is already running or the emitter is closed.
func (p *progressEmitter) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil || p.closed {
		return
	}

	run := &progressRun{done: make(chan struct{})}
	p.current = run
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-run.done:
				return

			case <-ticker.C:
				p.post(func() {
					if p.isCurrent(run) {
						p.emit()
					}
				})
			}
		}
	}()
}

// Stop cancels the running loop, if any. It does not wait for the goroutine to exit.
func (p *progressEmitter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

// Close stops the running loop and makes every later Start a no-op.
// Once Close returns no new loop goroutine can be added, so Wait cannot miss one.
func (p *progressEmitter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopLocked()
}

func (p *progressEmitter) stopLocked() {
	if p.current == nil {
		return
	}
	close(p.current.done)
	p.current = nil
}

// Running reports whether a loop is armed.
func (p *progressEmitter) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}

// Wait blocks until every loop goroutine has exited. Call Close first.
func (p *progressEmitter) Wait() {
	p.wg.Wait()
}

func (p *progressEmitter) isCurrent(run *progressRun) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current == run
}
