// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import "github.com/tomtom215/marquee/internal/models"

type keyer interface {
	Key() models.MediaKey
}

// keyed is an insertion-ordered set indexed by MediaKey. Values are never
// modified after construction; with and without return new sets.
type keyed[T keyer] struct {
	list  []T
	index map[models.MediaKey]int
}

func newKeyed[T keyer](items []T) keyed[T] {
	k := keyed[T]{
		list:  make([]T, 0, len(items)),
		index: make(map[models.MediaKey]int, len(items)),
	}
	for _, it := range items {
		k.put(it)
	}
	return k
}

// put must only be called on a set that has not been published yet.
func (k *keyed[T]) put(it T) {
	if i, ok := k.index[it.Key()]; ok {
		k.list[i] = it
		return
	}
	k.index[it.Key()] = len(k.list)
	k.list = append(k.list, it)
}

func (k keyed[T]) with(it T) keyed[T] {
	next := newKeyed(k.list)
	next.put(it)
	return next
}

func (k keyed[T]) without(key models.MediaKey) keyed[T] {
	if _, ok := k.index[key]; !ok {
		return k
	}
	out := make([]T, 0, len(k.list))
	for _, it := range k.list {
		if it.Key() != key {
			out = append(out, it)
		}
	}
	return newKeyed(out)
}

func (k keyed[T]) get(key models.MediaKey) (T, bool) {
	i, ok := k.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return k.list[i], true
}

func (k keyed[T]) has(key models.MediaKey) bool {
	_, ok := k.index[key]
	return ok
}

func (k keyed[T]) items() []T {
	out := make([]T, len(k.list))
	copy(out, k.list)
	return out
}
