// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/marquee/internal/models"
)

// Tracker reads tracked shows and watched episodes of owner.
func (s *SQLStore) Tracker(ctx context.Context, owner string) (models.TrackerSnapshot, error) {
	snap := models.TrackerSnapshot{Shows: []models.TrackedShow{}, Episodes: []models.EpisodeKey{}}
	if owner == "" {
		return snap, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT show_id, name, poster_path, last_updated
		FROM tracked_shows WHERE user_id = $1 ORDER BY last_updated DESC, show_id`, owner)
	if err != nil {
		return snap, fmt.Errorf("select tracked shows: %w", err)
	}
	for rows.Next() {
		var (
			show    models.TrackedShow
			poster  sql.NullString
			updated int64
		)
		if err := rows.Scan(&show.ShowID, &show.Name, &poster, &updated); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan tracked shows: %w", err)
		}
		show.PosterPath = stringPtr(poster)
		show.LastUpdated = fromMillis(updated)
		snap.Shows = append(snap.Shows, show)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return snap, fmt.Errorf("select tracked shows: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT show_id, season_number, episode_number
		FROM watched_episodes WHERE user_id = $1
		ORDER BY show_id, season_number, episode_number`, owner)
	if err != nil {
		return snap, fmt.Errorf("select watched episodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ep models.EpisodeKey
		if err := rows.Scan(&ep.ShowID, &ep.Season, &ep.Episode); err != nil {
			return snap, fmt.Errorf("scan watched episodes: %w", err)
		}
		snap.Episodes = append(snap.Episodes, ep)
	}
	return snap, rows.Err()
}

func showArgs(owner string, shows []models.TrackedShow) func(i int) []any {
	return func(i int) []any {
		sh := shows[i]
		return []any{owner, sh.ShowID, sh.Name, nullString(sh.PosterPath), toMillis(sh.LastUpdated)}
	}
}

// UpsertTrackedShows inserts or refreshes shows keyed by (owner, show_id).
func (s *SQLStore) UpsertTrackedShows(ctx context.Context, owner string, shows []models.TrackedShow) error {
	if owner == "" {
		return nil
	}
	const query = `
		INSERT INTO tracked_shows (user_id, show_id, name, poster_path, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, show_id) DO UPDATE SET
		    name = excluded.name,
		    poster_path = excluded.poster_path,
		    last_updated = excluded.last_updated`
	if _, err := s.batch(ctx, query, len(shows), showArgs(owner, shows)); err != nil {
		return fmt.Errorf("upsert tracked shows: %w", err)
	}
	return nil
}

// InsertTrackedShowsIgnore inserts shows that are not tracked yet.
func (s *SQLStore) InsertTrackedShowsIgnore(ctx context.Context, owner string, shows []models.TrackedShow) (int, error) {
	if owner == "" {
		return 0, nil
	}
	const query = `
		INSERT INTO tracked_shows (user_id, show_id, name, poster_path, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, show_id) DO NOTHING`
	n, err := s.batch(ctx, query, len(shows), showArgs(owner, shows))
	if err != nil {
		return n, fmt.Errorf("insert tracked shows: %w", err)
	}
	return n, nil
}

// DeleteTrackedShow untracks a show. Watched episodes are kept.
func (s *SQLStore) DeleteTrackedShow(ctx context.Context, owner string, showID int64) error {
	if owner == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM tracked_shows WHERE user_id = $1 AND show_id = $2`, owner, showID)
	if err != nil {
		return fmt.Errorf("delete tracked show: %w", err)
	}
	return nil
}

func episodeArgs(owner string, eps []models.EpisodeKey) func(i int) []any {
	return func(i int) []any {
		ep := eps[i]
		return []any{owner, ep.ShowID, ep.Season, ep.Episode}
	}
}

// UpsertWatchedEpisodes marks episodes watched in one transaction.
func (s *SQLStore) UpsertWatchedEpisodes(ctx context.Context, owner string, episodes []models.EpisodeKey) error {
	if owner == "" {
		return nil
	}
	const query = `
		INSERT INTO watched_episodes (user_id, show_id, season_number, episode_number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, show_id, season_number, episode_number) DO NOTHING`
	if _, err := s.batch(ctx, query, len(episodes), episodeArgs(owner, episodes)); err != nil {
		return fmt.Errorf("upsert watched episodes: %w", err)
	}
	return nil
}

// DeleteWatchedEpisodes marks episodes unwatched in one transaction.
func (s *SQLStore) DeleteWatchedEpisodes(ctx context.Context, owner string, episodes []models.EpisodeKey) error {
	if owner == "" {
		return nil
	}
	const query = `
		DELETE FROM watched_episodes
		WHERE user_id = $1 AND show_id = $2 AND season_number = $3 AND episode_number = $4`
	if _, err := s.batch(ctx, query, len(episodes), episodeArgs(owner, episodes)); err != nil {
		return fmt.Errorf("delete watched episodes: %w", err)
	}
	return nil
}
