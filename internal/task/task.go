// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package task models a remote write running in the background.
//
// A synchronizer applies its local mutation synchronously and hands back a
// Task for the remote leg. Callers that do not care simply drop it; tests and
// the HTTP layer Wait on it.
package task

import (
	"context"
	"sync"
)

// Task is a cancellable unit of background work with a single error result.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
	err    error
}

// Start runs fn in a new goroutine with a context derived from parent.
// The context is detached from parent's cancellation so request-scoped
// callers do not abort remote writes when they return; it keeps parent's values.
func Start(parent context.Context, fn func(ctx context.Context) error) *Task {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	t := &Task{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer cancel()
		t.finish(fn(ctx))
	}()
	return t
}

// Completed returns a Task that has already finished with err.
func Completed(err error) *Task {
	t := &Task{done: make(chan struct{}), cancel: func() {}}
	t.finish(err)
	return t
}

func (t *Task) finish(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

// Done is closed when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// WaitContext is Wait bounded by ctx.
func (t *Task) WaitContext(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the result without blocking; nil while the task is running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Cancel asks the task to stop. Work already handed to a remote store may still land.
func (t *Task) Cancel() {
	t.cancel()
}
