// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package tracker synchronizes tracked TV shows and watched episodes.
//
// Episode state is independent of show state: untracking a show keeps its
// watched episodes. Show track and untrack are staged in a pending-write
// queue before the remote call so the intent survives a failed write or a
// restart; episode writes are best effort unless episode queueing is enabled.
package tracker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/pending"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/retry"
	"github.com/tomtom215/marquee/internal/session"
	"github.com/tomtom215/marquee/internal/state"
	"github.com/tomtom215/marquee/internal/task"
)

const collectionName = "tracker"

// Deps are the tracker's collaborators.
type Deps struct {
	Local   localstore.Store
	Profile profile.Store
	Session *session.Manager
	Retry   retry.Policy
	// QueueEpisodeWrites stages episode writes that exhausted their retries
	// in the pending-episodes queue instead of only logging them.
	QueueEpisodeWrites bool
}

// Tracker is the tracker synchronizer.
type Tracker struct {
	deps     Deps
	state    *state.Store[snapshot]
	shows    *pending.Queue
	episodes *pending.Queue
	log      zerolog.Logger
	now      func() time.Time

	// mu serializes a local mutation with its guest snapshot write or its
	// pending stage, and guards last.
	mu sync.Mutex

	// last is the most recent remote leg per show; the next one for the same
	// show waits for it so remote writes land in mutation order.
	last map[int64]*task.Task
}

// New creates a Tracker in the empty state.
func New(d Deps) *Tracker {
	return &Tracker{
		deps:     d,
		state:    state.New(emptySnapshot()),
		shows:    pending.New(d.Local, localstore.KeyPendingTrackedShows),
		episodes: pending.New(d.Local, localstore.KeyPendingTrackedEpisodes),
		log:      logging.WithComponent(collectionName),
		now:      func() time.Time { return time.Now().UTC() },
		last:     make(map[int64]*task.Task),
	}
}

// PendingShows exposes the show-level pending queue.
func (t *Tracker) PendingShows() *pending.Queue {
	return t.shows
}

// PendingEpisodes exposes the episode-level pending queue.
func (t *Tracker) PendingEpisodes() *pending.Queue {
	return t.episodes
}

// IsLoading reports whether a load is in flight.
func (t *Tracker) IsLoading() bool {
	return t.state.IsLoading()
}

// Load fills the tracker from the backing store. When authenticated, staged
// writes are replayed first and whatever is still staged afterwards is laid
// over the fetched state.
func (t *Tracker) Load(ctx context.Context) {
	start := time.Now()
	t.state.SetLoading(true)
	defer t.state.SetLoading(false)

	s := t.deps.Session.Current()
	if !s.Authenticated() {
		snap := fromModel(ReadGuest(t.deps.Local))
		t.mu.Lock()
		t.state.Set(snap)
		t.mu.Unlock()
		metrics.RecordLoad(collectionName, "guest", time.Since(start), nil)
		return
	}

	t.FlushPending(ctx, s.UserID)
	err := t.pull(ctx, s.UserID)
	metrics.RecordLoad(collectionName, "authenticated", time.Since(start), err)
}

// RefreshFromServer re-reads the Profile Store to pick up changes made on
// other devices. It does nothing in guest mode.
func (t *Tracker) RefreshFromServer(ctx context.Context) {
	s := t.deps.Session.Current()
	if !s.Authenticated() {
		return
	}
	start := time.Now()
	t.state.SetLoading(true)
	defer t.state.SetLoading(false)

	err := t.pull(ctx, s.UserID)
	metrics.RecordLoad(collectionName, "refresh", time.Since(start), err)
}

// pull replaces the state with the Profile Store snapshot plus staged intents.
// A failed read leaves the tracker empty.
func (t *Tracker) pull(ctx context.Context, owner string) error {
	remote, err := t.deps.Profile.Tracker(ctx, owner)
	snap := emptySnapshot()
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", owner).Msg("Tracker fetch failed, tracker left empty")
	} else {
		snap = t.overlayPending(fromModel(remote), owner)
	}
	t.mu.Lock()
	t.state.Set(snap)
	t.mu.Unlock()
	return err
}

// overlayPending lays owner's staged intents over s.
func (t *Tracker) overlayPending(s snapshot, owner string) snapshot {
	for _, e := range t.shows.EntriesFor(owner) {
		id, err := strconv.ParseInt(e.EntityID, 10, 64)
		if err != nil {
			continue
		}
		switch e.Action {
		case pending.ActionTrack:
			var show models.TrackedShow
			if err := e.DecodeMetadata(&show); err != nil {
				continue
			}
			show.ShowID = id
			s.shows[id] = show
		case pending.ActionUntrack:
			delete(s.shows, id)
		}
	}
	for _, e := range t.episodes.EntriesFor(owner) {
		ep, err := models.ParseEpisodeKey(e.EntityID)
		if err != nil {
			continue
		}
		switch e.Action {
		case pending.ActionWatch:
			s.watched[ep.String()] = ep
		case pending.ActionUnwatch:
			delete(s.watched, ep.String())
		}
	}
	return s
}

// FlushPending replays both pending queues for owner. Failures are logged
// and leave the rest of the queue in place.
func (t *Tracker) FlushPending(ctx context.Context, owner string) {
	if n, err := t.shows.Flush(ctx, owner, t.replayShow); err != nil {
		t.log.Warn().Err(err).Int("replayed", n).Msg("Pending show writes not fully replayed")
	}
	if n, err := t.episodes.Flush(ctx, owner, t.replayEpisode); err != nil {
		t.log.Warn().Err(err).Int("replayed", n).Msg("Pending episode writes not fully replayed")
	}
}

// Shows returns tracked shows, most recently updated first.
func (t *Tracker) Shows() []models.TrackedShow {
	return t.state.Get().showList()
}

// Show returns one tracked show.
func (t *Tracker) Show(showID int64) (models.TrackedShow, bool) {
	sh, ok := t.state.Get().shows[showID]
	return sh, ok
}

// IsTracked reports whether showID is tracked.
func (t *Tracker) IsTracked(showID int64) bool {
	_, ok := t.state.Get().shows[showID]
	return ok
}

// IsWatched reports whether the episode is marked watched.
func (t *Tracker) IsWatched(showID int64, season, episode int) bool {
	key := models.EpisodeKey{ShowID: showID, Season: season, Episode: episode}
	_, ok := t.state.Get().watched[key.String()]
	return ok
}

// WatchedEpisodes returns the watched episodes of showID in season and
// episode order.
func (t *Tracker) WatchedEpisodes(showID int64) []models.EpisodeKey {
	out := []models.EpisodeKey{}
	for _, ep := range t.state.Get().watched {
		if ep.ShowID == showID {
			out = append(out, ep)
		}
	}
	sortEpisodes(out)
	return out
}

// Snapshot returns the full tracker state.
func (t *Tracker) Snapshot() models.TrackerSnapshot {
	return t.state.Get().model()
}

// Subscribe registers cb for every change of the tracker.
func (t *Tracker) Subscribe(cb func(models.TrackerSnapshot)) (unsubscribe func()) {
	return t.state.Subscribe(func(s snapshot) { cb(s.model()) })
}

// mutation is one tracker change on showID. stage, when set, runs in
// authenticated mode together with the local change and returns the settle
// step to run once the remote leg succeeds.
type mutation struct {
	operation string
	showID    int64
	mutate    func(snapshot) snapshot
	stage     func(owner string) (settle func() error, err error)
	remote    func(ctx context.Context, s models.Session) error
}

// apply changes local state immediately. Tracker mutations never roll back.
func (t *Tracker) apply(ctx context.Context, m mutation) *task.Task {
	s := t.deps.Session.Current()

	t.mu.Lock()
	next := t.state.Update(m.mutate)
	if !s.Authenticated() {
		err := writeGuest(t.deps.Local, next)
		t.mu.Unlock()
		if err != nil {
			t.log.Warn().Err(err).Str("operation", m.operation).Msg("Guest tracker snapshot write failed")
		}
		return task.Completed(err)
	}
	defer t.mu.Unlock()

	var settle func() error
	if m.stage != nil {
		var err error
		if settle, err = m.stage(s.UserID); err != nil {
			t.log.Warn().Err(err).Str("operation", m.operation).Msg("Failed to stage pending write")
		}
	}

	prev := t.last[m.showID]
	tk := task.Start(ctx, func(ctx context.Context) error {
		if prev != nil {
			// The outcome of the earlier write does not change this one.
			_ = prev.WaitContext(ctx)
		}
		if err := m.remote(ctx, s); err != nil {
			return err
		}
		if settle != nil {
			if err := settle(); err != nil {
				t.log.Warn().Err(err).Str("operation", m.operation).Msg("Failed to clear pending write")
			}
		}
		return nil
	})
	t.last[m.showID] = tk
	return tk
}

// write runs a Profile Store write under the retry policy.
func (t *Tracker) write(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := t.deps.Retry.Do(ctx, fn)
	metrics.RecordRemoteWrite(metrics.TargetProfile, operation, err)
	return err
}
