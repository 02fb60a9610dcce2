// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tracker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/pending"
	"github.com/tomtom215/marquee/internal/task"
	"github.com/tomtom215/marquee/internal/validation"
)

// TrackShow starts tracking showID. When authenticated the intent is staged
// in the pending queue before the remote write and cleared once it lands.
func (t *Tracker) TrackShow(ctx context.Context, showID int64, meta models.ShowMeta) *task.Task {
	show := models.TrackedShow{
		ShowID:      showID,
		Name:        meta.Name,
		PosterPath:  meta.PosterPath,
		LastUpdated: t.now(),
	}
	if err := validation.ValidateStruct(show); err != nil {
		return task.Completed(err)
	}
	entityID := strconv.FormatInt(showID, 10)

	return t.apply(ctx, mutation{
		operation: "track_show",
		showID:    showID,
		mutate: func(cur snapshot) snapshot {
			next := cur.clone()
			next.shows[showID] = show
			return next
		},
		stage: func(owner string) (func() error, error) {
			e, err := t.shows.Stage(owner, entityID, show, pending.ActionTrack)
			if err != nil {
				return nil, err
			}
			return func() error { return t.shows.Settle(e) }, nil
		},
		remote: func(ctx context.Context, s models.Session) error {
			err := t.write(ctx, "tracked_shows_upsert", func(ctx context.Context) error {
				return t.deps.Profile.UpsertTrackedShows(ctx, s.UserID, []models.TrackedShow{show})
			})
			if err != nil {
				t.log.Warn().Err(err).Int64("show_id", showID).Msg("Track show failed, kept in pending queue")
			}
			return err
		},
	})
}

// UntrackShow stops tracking showID. Watched episodes are kept.
func (t *Tracker) UntrackShow(ctx context.Context, showID int64) *task.Task {
	if showID <= 0 {
		return task.Completed(fmt.Errorf("untrack: invalid show id %d", showID))
	}
	entityID := strconv.FormatInt(showID, 10)

	// The record is captured before removal so the staged entry keeps it.
	var prev *models.TrackedShow
	return t.apply(ctx, mutation{
		operation: "untrack_show",
		showID:    showID,
		mutate: func(cur snapshot) snapshot {
			sh, ok := cur.shows[showID]
			if !ok {
				return cur
			}
			prev = &sh
			next := cur.clone()
			delete(next.shows, showID)
			return next
		},
		stage: func(owner string) (func() error, error) {
			var meta any
			if prev != nil {
				meta = *prev
			}
			e, err := t.shows.Stage(owner, entityID, meta, pending.ActionUntrack)
			if err != nil {
				return nil, err
			}
			return func() error { return t.shows.Settle(e) }, nil
		},
		remote: func(ctx context.Context, s models.Session) error {
			err := t.write(ctx, "tracked_shows_delete", func(ctx context.Context) error {
				return t.deps.Profile.DeleteTrackedShow(ctx, s.UserID, showID)
			})
			if err != nil {
				t.log.Warn().Err(err).Int64("show_id", showID).Msg("Untrack show failed, kept in pending queue")
			}
			return err
		},
	})
}

// replayShow re-issues a staged show write.
func (t *Tracker) replayShow(ctx context.Context, owner string, e pending.Entry) error {
	showID, err := strconv.ParseInt(e.EntityID, 10, 64)
	if err != nil {
		return fmt.Errorf("pending show id %q: %w", e.EntityID, err)
	}
	switch e.Action {
	case pending.ActionTrack:
		var show models.TrackedShow
		if err := e.DecodeMetadata(&show); err != nil {
			return err
		}
		show.ShowID = showID
		return t.write(ctx, "tracked_shows_upsert", func(ctx context.Context) error {
			return t.deps.Profile.UpsertTrackedShows(ctx, owner, []models.TrackedShow{show})
		})
	case pending.ActionUntrack:
		return t.write(ctx, "tracked_shows_delete", func(ctx context.Context) error {
			return t.deps.Profile.DeleteTrackedShow(ctx, owner, showID)
		})
	}
	return fmt.Errorf("pending show %s: unexpected action %q", e.EntityID, e.Action)
}
