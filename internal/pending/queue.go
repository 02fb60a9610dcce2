// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package pending implements the pending-write fallback queue: mutations whose
// remote leg has not been confirmed, kept in the local store and replayed at
// the start of the next authenticated session.
package pending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Action is the staged mutation.
type Action string

const (
	ActionTrack   Action = "track"
	ActionUntrack Action = "untrack"
	ActionWatch   Action = "watch"
	ActionUnwatch Action = "unwatch"
)

// Entry is one staged write. Metadata is the entity snapshot taken when the
// write was staged. OwnerID is the user the write belongs to; entries without
// one replay for whichever user flushes next.
type Entry struct {
	OwnerID  string          `json:"owner_id,omitempty"`
	EntityID string          `json:"entity_id" validate:"required"`
	Action   Action          `json:"action" validate:"oneof=track untrack watch unwatch"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
	QueuedAt time.Time       `json:"queued_at"`
}

func (e Entry) ownedBy(owner string) bool {
	return e.OwnerID == "" || e.OwnerID == owner
}

func (e Entry) same(other Entry) bool {
	return e.OwnerID == other.OwnerID && e.EntityID == other.EntityID
}

// DecodeMetadata unmarshals the entry's metadata into v.
func (e Entry) DecodeMetadata(v any) error {
	if len(e.Metadata) == 0 {
		return errors.New("pending: entry has no metadata")
	}
	return json.Unmarshal(e.Metadata, v)
}

// ReplayFunc re-issues one staged write for owner.
type ReplayFunc func(ctx context.Context, ownerID string, e Entry) error

// Queue is a pending-write queue bound to one local key.
type Queue struct {
	store localstore.Store
	key   string
	now   func() time.Time

	mu sync.Mutex
}

// New creates a queue persisted under key.
func New(store localstore.Store, key string) *Queue {
	q := &Queue{store: store, key: key, now: time.Now}
	metrics.SetPendingDepth(key, len(q.read()))
	return q
}

// Key returns the local key backing the queue.
func (q *Queue) Key() string {
	return q.key
}

// Save stages an unowned write for entityID. A later save for the same entity
// replaces the earlier entry in place.
func (q *Queue) Save(entityID string, metadata any, action Action) error {
	_, err := q.Stage("", entityID, metadata, action)
	return err
}

// SaveFor is Save for a write that belongs to ownerID.
func (q *Queue) SaveFor(ownerID, entityID string, metadata any, action Action) error {
	_, err := q.Stage(ownerID, entityID, metadata, action)
	return err
}

// Stage stages a write for ownerID and returns the stored entry, for callers
// that later Settle it. Entries are unique per owner and entity.
func (q *Queue) Stage(ownerID, entityID string, metadata any, action Action) (Entry, error) {
	var raw json.RawMessage
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return Entry{}, fmt.Errorf("pending: encode metadata for %s: %w", entityID, err)
		}
		raw = data
	}
	entry := Entry{OwnerID: ownerID, EntityID: entityID, Action: action, Metadata: raw, QueuedAt: q.now().UTC()}

	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.read()
	replaced := false
	for i := range entries {
		if entries[i].same(entry) {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	return entry, q.write(entries)
}

// Remove drops every entry for entityID. The key is deleted once the queue is empty.
func (q *Queue) Remove(entityID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(func(e Entry) bool { return e.EntityID == entityID })
}

func (q *Queue) removeLocked(match func(Entry) bool) error {
	entries := q.read()
	kept := entries[:0]
	for _, e := range entries {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return q.write(kept)
}

// Entries returns the staged writes in insertion order.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.read()
}

// EntriesFor returns the staged writes ownerID may replay: its own and the
// unowned ones, in insertion order.
func (q *Queue) EntriesFor(ownerID string) []Entry {
	all := q.Entries()
	out := all[:0]
	for _, e := range all {
		if e.ownedBy(ownerID) {
			out = append(out, e)
		}
	}
	return out
}

// Get returns the first staged write for entityID, if any.
func (q *Queue) Get(entityID string) (Entry, bool) {
	for _, e := range q.Entries() {
		if e.EntityID == entityID {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of staged writes.
func (q *Queue) Len() int {
	return len(q.Entries())
}

// Flush replays ownerID's entries sequentially. Each success is removed; the
// first failure stops the pass and leaves it and every later entry staged.
// Entries of other owners are left untouched.
func (q *Queue) Flush(ctx context.Context, ownerID string, replay ReplayFunc) (int, error) {
	log := logging.CtxWith(ctx).Str("queue", q.key).Logger()
	flushed := 0
	for _, e := range q.EntriesFor(ownerID) {
		if err := ctx.Err(); err != nil {
			return flushed, err
		}
		err := replay(ctx, ownerID, e)
		metrics.RecordPendingReplay(q.key, err)
		if err != nil {
			log.Warn().Err(err).
				Str("entity_id", e.EntityID).
				Str("action", string(e.Action)).
				Int("flushed", flushed).
				Msg("Pending write replay failed, leaving remaining entries queued")
			return flushed, fmt.Errorf("replay %s %s: %w", e.Action, e.EntityID, err)
		}
		if err := q.Settle(e); err != nil {
			return flushed, err
		}
		flushed++
	}
	if flushed > 0 {
		log.Info().Int("flushed", flushed).Msg("Pending writes replayed")
	}
	return flushed, nil
}

// Settle removes e once its write is confirmed, unless a newer save for the
// same entity replaced it in the meantime.
func (q *Queue) Settle(e Entry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, cur := range q.read() {
		if cur.same(e) {
			if cur.Action != e.Action || !cur.QueuedAt.Equal(e.QueuedAt) {
				return nil
			}
			break
		}
	}
	return q.removeLocked(e.same)
}

func (q *Queue) read() []Entry {
	return localstore.ReadSnapshot[Entry](q.store, q.key)
}

func (q *Queue) write(entries []Entry) error {
	metrics.SetPendingDepth(q.key, len(entries))
	if len(entries) == 0 {
		return q.store.RemoveItem(q.key)
	}
	return localstore.WriteSnapshot(q.store, q.key, entries)
}
