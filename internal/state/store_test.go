// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package state

import (
	"sync"
	"testing"
)

func TestStoreUpdateNotifies(t *testing.T) {
	t.Parallel()

	s := New([]int{1})
	var got [][]int
	unsub := s.Subscribe(func(v []int) { got = append(got, v) })

	s.Update(func(cur []int) []int {
		next := append([]int(nil), cur...)
		return append(next, 2)
	})
	unsub()
	s.Set([]int{9})

	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}
	if len(got[0]) != 2 || got[0][1] != 2 {
		t.Errorf("notified value = %v, want [1 2]", got[0])
	}
	if v := s.Get(); len(v) != 1 || v[0] != 9 {
		t.Errorf("Get() = %v, want [9]", v)
	}
}

func TestStoreSubscriberMayReadStore(t *testing.T) {
	t.Parallel()

	s := New(0)
	var seen int
	s.Subscribe(func(int) { seen = s.Get() })
	s.Set(5)

	if seen != 5 {
		t.Errorf("subscriber saw %d, want 5", seen)
	}
}

func TestStoreLoadingFlag(t *testing.T) {
	t.Parallel()

	s := New("x")
	if s.IsLoading() {
		t.Fatal("new store should not be loading")
	}
	s.SetLoading(true)
	if !s.IsLoading() {
		t.Error("IsLoading() = false after SetLoading(true)")
	}
	s.SetLoading(false)
	if s.IsLoading() {
		t.Error("IsLoading() = true after SetLoading(false)")
	}
}

func TestStoreConcurrentUpdates(t *testing.T) {
	t.Parallel()

	s := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	if got := s.Get(); got != 50 {
		t.Errorf("Get() = %d, want 50", got)
	}
}
