// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/state"
	"github.com/tomtom215/marquee/internal/task"
)

// base is the state and plumbing shared by the synchronizers.
type base[T any] struct {
	name  string
	deps  Deps
	state *state.Store[T]
	log   zerolog.Logger

	// mu serializes a local mutation with its guest snapshot write so
	// snapshots land in mutation order.
	mu sync.Mutex
}

func newBase[T any](name string, deps Deps, initial T) *base[T] {
	return &base[T]{
		name:  name,
		deps:  deps,
		state: state.New(initial),
		log:   logging.WithComponent("collections").With().Str("collection", name).Logger(),
	}
}

// Name returns the collection name.
func (b *base[T]) Name() string {
	return b.name
}

// IsLoading reports whether a Load is in flight.
func (b *base[T]) IsLoading() bool {
	return b.state.IsLoading()
}

// optimistic describes one mutation. compensate is nil for mutations that
// keep their local effect when the remote leg fails.
type optimistic[T any] struct {
	operation  string
	mutate     func(T) T
	compensate func(T) T
	persist    func(T) error
	remote     func(ctx context.Context, s models.Session) error
}

// applyOptimistic applies op.mutate immediately. In guest mode the new value
// is persisted and a completed task is returned. Otherwise the remote leg
// runs in the background; when it fails, op.compensate (if any) is applied.
func (b *base[T]) applyOptimistic(ctx context.Context, op optimistic[T]) *task.Task {
	s := b.deps.Session.Current()

	b.mu.Lock()
	next := b.state.Update(op.mutate)
	if !s.Authenticated() {
		var err error
		if op.persist != nil {
			if err = op.persist(next); err != nil {
				b.log.Warn().Err(err).Str("operation", op.operation).Msg("Guest snapshot write failed")
			}
		}
		b.mu.Unlock()
		return task.Completed(err)
	}
	b.mu.Unlock()

	if op.remote == nil {
		return task.Completed(nil)
	}
	return task.Start(ctx, func(ctx context.Context) error {
		err := op.remote(ctx, s)
		if err == nil {
			return nil
		}
		ev := logging.Ctx(ctx).Warn().Err(err).
			Str("collection", b.name).
			Str("operation", op.operation).
			Str("user_id", s.UserID)
		if op.compensate == nil {
			ev.Msg("Remote write failed, local change kept")
			return err
		}
		b.state.Update(op.compensate)
		metrics.RecordRollback(b.name)
		ev.Msg("Remote write failed, local change rolled back")
		return err
	})
}

// load fills the state from the Profile Store when authenticated and from
// local storage otherwise. Remote failures leave empty in place.
func (b *base[T]) load(ctx context.Context, remote func(ctx context.Context, owner string) (T, error), local func() T, empty T) {
	start := time.Now()
	b.state.SetLoading(true)
	defer b.state.SetLoading(false)

	s := b.deps.Session.Current()
	if !s.Authenticated() {
		v := local()
		b.mu.Lock()
		b.state.Set(v)
		b.mu.Unlock()
		metrics.RecordLoad(b.name, modeGuest, time.Since(start), nil)
		return
	}

	v, err := remote(ctx, s.UserID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("collection", b.name).Str("user_id", s.UserID).
			Msg("Remote load failed, collection left empty")
		v = empty
	}
	b.mu.Lock()
	b.state.Set(v)
	b.mu.Unlock()
	metrics.RecordLoad(b.name, modeAuthenticated, time.Since(start), err)
}

// accountWrite runs a boolean Account Service write. A false answer becomes
// account.ErrRejected.
func accountWrite(ctx context.Context, operation string, fn func(ctx context.Context) (bool, error)) error {
	ok, err := fn(ctx)
	switch {
	case err != nil:
		metrics.RecordRemoteWrite(metrics.TargetAccount, operation, err)
		return err
	case !ok:
		metrics.RecordRemoteRejected(metrics.TargetAccount, operation)
		return account.ErrRejected
	}
	metrics.RecordRemoteWrite(metrics.TargetAccount, operation, nil)
	return nil
}

// profileWrite runs a Profile Store write under the retry policy.
func (b *base[T]) profileWrite(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := b.deps.Retry.Do(ctx, fn)
	metrics.RecordRemoteWrite(metrics.TargetProfile, operation, err)
	return err
}

// both runs the Account and Profile legs of a removal, each regardless of
// the other's outcome.
func both(first, second func() error) error {
	return errors.Join(first(), second())
}
