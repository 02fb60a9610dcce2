// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tracker

import (
	"context"
	"fmt"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/pending"
	"github.com/tomtom215/marquee/internal/task"
	"github.com/tomtom215/marquee/internal/validation"
)

// touchShow bumps lastUpdated of showID in next. With meta, the show is
// created or its name and poster refreshed. It returns the show record when
// one was written.
func (t *Tracker) touchShow(next snapshot, showID int64, meta *models.ShowMeta) (models.TrackedShow, bool) {
	sh, tracked := next.shows[showID]
	switch {
	case meta != nil:
		sh = models.TrackedShow{ShowID: showID, Name: meta.Name, PosterPath: meta.PosterPath}
	case !tracked:
		return models.TrackedShow{}, false
	}
	sh.LastUpdated = t.now()
	next.shows[showID] = sh
	return sh, true
}

func validEpisodes(showID int64, season int, episodes []int) ([]models.EpisodeKey, error) {
	keys := make([]models.EpisodeKey, 0, len(episodes))
	seen := make(map[int]bool, len(episodes))
	for _, n := range episodes {
		if seen[n] {
			continue
		}
		seen[n] = true
		k := models.EpisodeKey{ShowID: showID, Season: season, Episode: n}
		if err := validation.ValidateStruct(k); err != nil {
			return nil, fmt.Errorf("episode %s: %w", k, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func validMeta(meta *models.ShowMeta) error {
	if meta == nil {
		return nil
	}
	return validation.ValidateStruct(*meta)
}

// ToggleWatched flips one episode. Marking it watched with meta also creates
// or refreshes the show record.
func (t *Tracker) ToggleWatched(ctx context.Context, showID int64, season, episode int, meta *models.ShowMeta) *task.Task {
	keys, err := validEpisodes(showID, season, []int{episode})
	if err != nil {
		return task.Completed(err)
	}
	if err := validMeta(meta); err != nil {
		return task.Completed(err)
	}
	key := keys[0]

	var (
		watched bool
		show    models.TrackedShow
		touched bool
	)
	return t.apply(ctx, mutation{
		operation: "toggle_watched",
		showID:    showID,
		mutate: func(cur snapshot) snapshot {
			next := cur.clone()
			if _, ok := next.watched[key.String()]; ok {
				delete(next.watched, key.String())
				watched = false
				show, touched = t.touchShow(next, showID, nil)
			} else {
				next.watched[key.String()] = key
				watched = true
				show, touched = t.touchShow(next, showID, meta)
			}
			return next
		},
		remote: func(ctx context.Context, s models.Session) error {
			return t.writeEpisodes(ctx, s.UserID, keys, watched, show, touched)
		},
	})
}

// MarkSeasonWatched marks every listed episode watched in one local pass and
// one batched remote write.
func (t *Tracker) MarkSeasonWatched(ctx context.Context, showID int64, season int, episodes []int, meta *models.ShowMeta) *task.Task {
	return t.markSeason(ctx, showID, season, episodes, meta, true)
}

// MarkSeasonUnwatched clears every listed episode in one local pass and one
// batched remote write.
func (t *Tracker) MarkSeasonUnwatched(ctx context.Context, showID int64, season int, episodes []int) *task.Task {
	return t.markSeason(ctx, showID, season, episodes, nil, false)
}

func (t *Tracker) markSeason(ctx context.Context, showID int64, season int, episodes []int, meta *models.ShowMeta, watched bool) *task.Task {
	keys, err := validEpisodes(showID, season, episodes)
	if err != nil {
		return task.Completed(err)
	}
	if err := validMeta(meta); err != nil {
		return task.Completed(err)
	}
	if len(keys) == 0 {
		return task.Completed(nil)
	}

	var (
		show    models.TrackedShow
		touched bool
	)
	op := "mark_season_unwatched"
	if watched {
		op = "mark_season_watched"
	}
	return t.apply(ctx, mutation{
		operation: op,
		showID:    showID,
		mutate: func(cur snapshot) snapshot {
			next := cur.clone()
			for _, k := range keys {
				if watched {
					next.watched[k.String()] = k
				} else {
					delete(next.watched, k.String())
				}
			}
			show, touched = t.touchShow(next, showID, meta)
			return next
		},
		remote: func(ctx context.Context, s models.Session) error {
			return t.writeEpisodes(ctx, s.UserID, keys, watched, show, touched)
		},
	})
}

// writeEpisodes is the remote leg of every episode change. A failure after
// retries is logged and, when enabled, staged per episode.
func (t *Tracker) writeEpisodes(ctx context.Context, owner string, keys []models.EpisodeKey, watched bool, show models.TrackedShow, touched bool) error {
	var err error
	if watched {
		err = t.write(ctx, "watched_episodes_upsert", func(ctx context.Context) error {
			return t.deps.Profile.UpsertWatchedEpisodes(ctx, owner, keys)
		})
	} else {
		err = t.write(ctx, "watched_episodes_delete", func(ctx context.Context) error {
			return t.deps.Profile.DeleteWatchedEpisodes(ctx, owner, keys)
		})
	}
	if err == nil && touched {
		err = t.write(ctx, "tracked_shows_upsert", func(ctx context.Context) error {
			return t.deps.Profile.UpsertTrackedShows(ctx, owner, []models.TrackedShow{show})
		})
	}
	if err == nil {
		return nil
	}

	ev := t.log.Warn().Err(err).Int64("show_id", keys[0].ShowID).Int("episodes", len(keys)).Bool("watched", watched)
	if !t.deps.QueueEpisodeWrites {
		ev.Msg("Episode write failed after retries, dropped")
		return err
	}
	action := pending.ActionUnwatch
	if watched {
		action = pending.ActionWatch
	}
	for _, k := range keys {
		if serr := t.episodes.SaveFor(owner, k.String(), k, action); serr != nil {
			t.log.Warn().Err(serr).Str("episode", k.String()).Msg("Failed to stage episode write")
		}
	}
	ev.Msg("Episode write failed after retries, staged for replay")
	return err
}

// replayEpisode re-issues a staged episode write.
func (t *Tracker) replayEpisode(ctx context.Context, owner string, e pending.Entry) error {
	key, err := models.ParseEpisodeKey(e.EntityID)
	if err != nil {
		return err
	}
	keys := []models.EpisodeKey{key}
	switch e.Action {
	case pending.ActionWatch:
		return t.write(ctx, "watched_episodes_upsert", func(ctx context.Context) error {
			return t.deps.Profile.UpsertWatchedEpisodes(ctx, owner, keys)
		})
	case pending.ActionUnwatch:
		return t.write(ctx, "watched_episodes_delete", func(ctx context.Context) error {
			return t.deps.Profile.DeleteWatchedEpisodes(ctx, owner, keys)
		})
	}
	return fmt.Errorf("pending episode %s: unexpected action %q", e.EntityID, e.Action)
}
