// Package guard serializes the read-check-append section of a submission.
package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Guard runs fn as a critical section.
type Guard interface {
	Do(ctx context.Context, fn func(context.Context) error) error
}

// ErrClosed is returned by Queue.Do after Close.
var ErrClosed = errors.New("guard: queue closed")

// None runs fn inline. Concurrent callers may interleave.
type None struct{}

func (None) Do(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Mutex is a process-local lock that honors ctx while waiting.
type Mutex struct {
	sem chan struct{}
}

func NewMutex() *Mutex {
	return &Mutex{sem: make(chan struct{}, 1)}
}

func (m *Mutex) Do(ctx context.Context, fn func(context.Context) error) error {
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("guard: wait for lock: %w", ctx.Err())
	}
	defer func() { <-m.sem }()
	return fn(ctx)
}

type job struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// Queue hands every critical section to a single writer goroutine.
type Queue struct {
	jobs      chan job
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue starts the writer with a bounded backlog.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	q := &Queue{
		jobs: make(chan job, size),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		select {
		case j := <-q.jobs:
			if err := j.ctx.Err(); err != nil {
				j.result <- err
				continue
			}
			j.result <- j.fn(j.ctx)
		case <-q.quit:
			for {
				select {
				case j := <-q.jobs:
					j.result <- ErrClosed
				default:
					return
				}
			}
		}
	}
}

// Do enqueues fn and waits for its result.
func (q *Queue) Do(ctx context.Context, fn func(context.Context) error) error {
	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case <-q.quit:
		return ErrClosed
	default:
	}
	select {
	case q.jobs <- j:
	case <-q.quit:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("guard: enqueue: %w", ctx.Err())
	}
	select {
	case err := <-j.result:
		return err
	case <-q.done:
		select {
		case err := <-j.result:
			return err
		default:
			return ErrClosed
		}
	}
}

// Close stops the writer after the current job; queued jobs get ErrClosed.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.quit) })
	<-q.done
}
