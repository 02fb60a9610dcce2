// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package state holds in-process observable values owned by the synchronizers.
package state

import "sync"

// Store is a value with subscribers and a loading flag. Readers get the
// current value without copying; writers replace it through Update, so
// values handed out must be treated as immutable.
type Store[T any] struct {
	mu      sync.RWMutex
	value   T
	loading bool
	nextID  int
	subs    map[int]func(T)
}

// New creates a Store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{value: initial, subs: make(map[int]func(T))}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Store[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update computes the next value from the current one under the write lock.
// Subscribers run after the lock is released, in no particular order.
func (s *Store[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	next := fn(s.value)
	s.value = next
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, cb := range subs {
		cb(next)
	}
	return next
}

// Subscribe registers cb for every future change. The returned func unsubscribes.
func (s *Store[T]) Subscribe(cb func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = cb
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// SetLoading toggles the loading flag.
func (s *Store[T]) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// IsLoading reports whether a load is in progress.
func (s *Store[T]) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store[T]) snapshotSubs() []func(T) {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]func(T), 0, len(s.subs))
	for _, cb := range s.subs {
		out = append(out, cb)
	}
	return out
}
