package kvstore

import (
	"context"
	"sync"
)

// writeLaneBuffer bounds how many writes may be queued ahead of the
// drain goroutine before submit starts blocking its callers.
const writeLaneBuffer = 64

// writeLane is the single serialized path every KVStore mutation flows
// through. One goroutine drains jobs in FIFO order, giving put/delete
// a total order within one Store instance without requiring every
// caller to hold a shared mutex directly.
//
// Adapted from the producer/consumer event-queue idiom this package
// was grounded on: a channel stands in for the mutex-guarded slice
// plus signal channel, since Go's channels already give us a blocking,
// thread-safe FIFO for free.
type writeLane struct {
	jobs      chan writeJob
	closeOnce sync.Once
	done      chan struct{}
}

type writeJob struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

func newWriteLane() *writeLane {
	wl := &writeLane{
		jobs: make(chan writeJob, writeLaneBuffer),
		done: make(chan struct{}),
	}
	go wl.run()
	return wl
}

func (wl *writeLane) run() {
	defer close(wl.done)
	for job := range wl.jobs {
		job.done <- job.fn(context.WithoutCancel(job.ctx))
	}
}

// submit enqueues fn and blocks until it has run to completion,
// returning its error. If ctx is canceled before fn is enqueued, submit
// returns early with ctx.Err() without enqueuing fn. If ctx is
// canceled after fn has entered the write lane, fn still runs to
// completion — mutations are not cancellable once admitted, only
// abandonable by the caller — but submit itself still returns
// ctx.Err() promptly rather than waiting for fn's result.
func (wl *writeLane) submit(ctx context.Context, fn func(ctx context.Context) error) error {
	job := writeJob{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case wl.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-wl.done:
		return errLaneClosed
	}

	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting new jobs once the ones already queued have
// drained. Safe to call more than once.
func (wl *writeLane) close() {
	wl.closeOnce.Do(func() {
		close(wl.jobs)
	})
}
