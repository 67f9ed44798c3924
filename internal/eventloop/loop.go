// Package eventloop runs functions one at a time on a single goroutine.
//
// The editor state (documents, views, the operator) is owned by that
// goroutine. Background work hands mutations to it through Dispatch.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by Dispatch once the loop has exited.
var ErrStopped = errors.New("event loop stopped")

type job struct {
	ctx  context.Context
	fn   func()
	done chan struct{}
}

// Loop is a serial executor. Create one with New and start it with Run.
type Loop struct {
	jobs    chan job
	stopped chan struct{}
	once    sync.Once
}

// New returns a loop with room for queueLen pending jobs.
func New(queueLen int) *Loop {
	if queueLen < 0 {
		queueLen = 0
	}
	return &Loop{
		jobs:    make(chan job, queueLen),
		stopped: make(chan struct{}),
	}
}

// Run executes queued functions until ctx is cancelled. Jobs still queued
// when Run returns are never executed.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.stopped) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-l.jobs:
			if j.ctx.Err() == nil {
				j.fn()
			}
			close(j.done)
		}
	}
}

// Dispatch queues fn and blocks until it has run on the loop goroutine.
// A job whose ctx is done before it starts is skipped and ctx.Err() is
// returned. Dispatch must not be called from the loop goroutine.
func (l *Loop) Dispatch(ctx context.Context, fn func()) error {
	j := job{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	case l.jobs <- j:
	}

	select {
	case <-j.done:
		return ctx.Err()
	case <-l.stopped:
		// Run may have closed done right before exiting
		select {
		case <-j.done:
			return ctx.Err()
		default:
			return ErrStopped
		}
	}
}

// Stopped is closed once Run has returned.
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}
