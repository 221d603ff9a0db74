// Package pool runs submitted tasks on a fixed number of concurrent slots.
//
// Submission never blocks: tasks wait in an unbounded FIFO until a slot
// frees up. Tasks start in submission order and may finish in any order.
package pool

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sync/errgroup"
)

// DefaultSize is the number of concurrent slots when none is configured.
const DefaultSize = 200

// ErrClosed is returned by Submit after Drain has been called.
var ErrClosed = errors.New("pool: closed")

// Pool is a bounded set of slots fed from an unbounded queue.
type Pool[T any] struct {
	run   func(T)
	group errgroup.Group

	mu      sync.Mutex
	pending *queue.Queue
	closed  bool
	wake    chan struct{}
	done    chan struct{}

	submitted atomic.Int64
	completed atomic.Int64
}

// New starts a pool running run on at most size tasks at a time.
// size < 1 means DefaultSize.
func New[T any](size int, run func(T)) *Pool[T] {
	if size < 1 {
		size = DefaultSize
	}
	p := &Pool[T]{
		run:     run,
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	p.group.SetLimit(size)
	go p.dispatch()
	return p
}

// Submit enqueues task. It does not wait for a free slot.
func (p *Pool[T]) Submit(task T) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.pending.Add(task)
	p.mu.Unlock()

	p.submitted.Add(1)
	p.signal()
	return nil
}

// Drain stops accepting tasks and blocks until every submitted task has
// finished.
func (p *Pool[T]) Drain() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.signal()
	<-p.done
	_ = p.group.Wait()
}

// Submitted returns the number of accepted tasks.
func (p *Pool[T]) Submitted() int64 {
	return p.submitted.Load()
}

// Completed returns the number of finished tasks.
func (p *Pool[T]) Completed() int64 {
	return p.completed.Load()
}

// Pending returns the number of tasks waiting for a slot.
func (p *Pool[T]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.Length()
}

func (p *Pool[T]) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// dispatch moves queued tasks onto slots; group.Go blocks while all slots
// are busy, which holds the remaining tasks in the queue.
func (p *Pool[T]) dispatch() {
	defer close(p.done)

	for {
		p.mu.Lock()
		if p.pending.Length() > 0 {
			task := p.pending.Remove().(T)
			p.mu.Unlock()

			p.group.Go(func() error {
				defer p.completed.Add(1)
				p.run(task)
				return nil
			})
			continue
		}
		closed := p.closed
		p.mu.Unlock()

		if closed {
			return
		}
		<-p.wake
	}
}
