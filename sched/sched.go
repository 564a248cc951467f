// Package sched defers background work so it never runs inside the caller's
// resolution pass.
package sched

import (
	"sync"
	"sync/atomic"
)

// Scheduler runs f at some later point. Implementations must not block the
// caller beyond handing f off.
type Scheduler interface {
	Defer(f func())
}

// Func adapts a plain function to Scheduler.
type Func func(f func())

func (s Func) Defer(f func()) { s(f) }

// Go runs each task on its own goroutine, i.e. on the next scheduling turn.
type Go struct{}

func (Go) Defer(f func()) { go f() }

// Inline runs tasks synchronously. Useful in tests and one-shot CLIs where
// there is no render to protect.
type Inline struct{}

func (Inline) Defer(f func()) { f() }

// Queue drains tasks with a fixed pool of workers. When the queue is full new
// tasks are dropped rather than blocking the caller; background refreshes are
// repeatable, so losing one only delays freshness.
type Queue struct {
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ Scheduler = (*Queue)(nil)

// NewQueue starts workers goroutines reading from a queue of qlen tasks.
func NewQueue(workers, qlen int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	s := &Queue{q: make(chan func(), qlen)}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer s.wg.Done()
			for f := range s.q {
				f()
			}
		}()
	}
	return s
}

func (s *Queue) Defer(f func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return
	}
	select {
	case s.q <- f:
	default: // drop
		s.dropped.Add(1)
	}
}

// Dropped reports how many tasks were discarded because the queue was full or
// already closed.
func (s *Queue) Dropped() uint64 { return s.dropped.Load() }

// Close stops accepting tasks and waits for queued ones to finish.
func (s *Queue) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.q)
		s.mu.Unlock()
		s.wg.Wait()
	})
}
