// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// DefaultHistoryLimit caps the number of remembered titles.
const DefaultHistoryLimit = 50

// History keeps recently viewed titles on the device, newest first. It is
// not synchronized to any remote store.
type History struct {
	*base[[]models.HistoryEntry]
	limit int
}

// NewHistory creates the history collection. limit <= 0 uses DefaultHistoryLimit.
func NewHistory(d Deps, limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{base: newBase(NameHistory, d, []models.HistoryEntry{}), limit: limit}
}

// Load reads the history from local storage.
func (h *History) Load(_ context.Context) {
	start := time.Now()
	h.state.SetLoading(true)
	defer h.state.SetLoading(false)

	entries := localstore.ReadSnapshot[models.HistoryEntry](h.deps.Local, localstore.KeyHistory)
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	h.mu.Lock()
	h.state.Set(entries)
	h.mu.Unlock()
	metrics.RecordLoad(h.name, modeLocal, time.Since(start), nil)
}

// Record moves item to the front of the history.
func (h *History) Record(item models.CollectionItem) error {
	if err := validation.ValidateStruct(item); err != nil {
		return err
	}
	entry := models.HistoryEntry{CollectionItem: item, ViewedAt: time.Now().UTC()}
	key := item.Key()

	h.mu.Lock()
	defer h.mu.Unlock()
	next := h.state.Update(func(cur []models.HistoryEntry) []models.HistoryEntry {
		out := make([]models.HistoryEntry, 0, min(len(cur)+1, h.limit))
		out = append(out, entry)
		for _, e := range cur {
			if len(out) == h.limit {
				break
			}
			if e.Key() != key {
				out = append(out, e)
			}
		}
		return out
	})
	if err := localstore.WriteSnapshot(h.deps.Local, localstore.KeyHistory, next); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// Clear forgets every entry.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Set([]models.HistoryEntry{})
	if err := h.deps.Local.RemoveItem(localstore.KeyHistory); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Entries returns the history, newest first.
func (h *History) Entries() []models.HistoryEntry {
	cur := h.state.Get()
	out := make([]models.HistoryEntry, len(cur))
	copy(out, cur)
	return out
}

// Subscribe registers cb for every change of the history.
func (h *History) Subscribe(cb func([]models.HistoryEntry)) (unsubscribe func()) {
	return h.state.Subscribe(cb)
}
