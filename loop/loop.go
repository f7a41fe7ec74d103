// Package loop provides a cooperative event loop: a single goroutine that runs
// posted tasks one at a time, in the order they were posted.
//
// Streams in this module hold no locks. Every stream, and everything wired to
// it, is owned by one goroutine; goroutines doing blocking I/O hand their
// results to that owner with Post. Tasks may Post further tasks, which run on
// a later turn. Do must never be called from inside a task.
package loop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/itohio/duplexer/errors"
)

type Loop struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	done  chan struct{}
}

// New starts a loop that runs until ctx is cancelled or Close is called.
func New(ctx context.Context, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{
		ctx:    ctx,
		cancel: cancel,
		log:    log.With("module", "loop"),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) Context() context.Context {
	return l.ctx
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post enqueues task for a later turn. It never blocks and reports false if the
// loop is already stopped.
func (l *Loop) Post(task func()) bool {
	if task == nil {
		return false
	}
	l.mu.Lock()
	if l.ctx.Err() != nil {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs task on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		task()
	}) {
		return errors.ErrClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return errors.ErrClosed
		}
	}
}

// Close stops the loop and waits for the running task to return. Tasks that
// have not started yet are dropped.
func (l *Loop) Close() error {
	l.cancel()
	<-l.done
	return nil
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		tasks := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(tasks) == 0 {
			select {
			case <-l.ctx.Done():
				l.log.Debug("loop stopped", "err", l.ctx.Err())
				return
			case <-l.wake:
			}
			continue
		}

		for _, task := range tasks {
			if l.ctx.Err() != nil {
				l.log.Debug("loop stopped", "err", l.ctx.Err(), "dropped", len(tasks))
				return
			}
			l.exec(task)
		}
	}
}

func (l *Loop) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("task panicked", "panic", r)
		}
	}()
	task()
}
