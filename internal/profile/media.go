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

// Items returns a favorites or watchlist collection in insertion order.
func (s *SQLStore) Items(ctx context.Context, c Collection, owner string) ([]models.CollectionItem, error) {
	table, err := c.table()
	if err != nil {
		return nil, err
	}
	if owner == "" {
		return []models.CollectionItem{}, nil
	}
	query := `SELECT media_id, media_type, title, poster_path, added_at FROM ` + table +
		` WHERE user_id = $1 ORDER BY added_at, media_id`
	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	items := []models.CollectionItem{}
	for rows.Next() {
		var (
			it     models.CollectionItem
			poster sql.NullString
			added  int64
		)
		if err := rows.Scan(&it.MediaID, &it.MediaType, &it.Title, &poster, &added); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		it.PosterPath = stringPtr(poster)
		it.AddedAt = fromMillis(added)
		items = append(items, it)
	}
	return items, rows.Err()
}

func itemArgs(owner string, items []models.CollectionItem) func(i int) []any {
	return func(i int) []any {
		it := items[i]
		return []any{owner, it.MediaID, string(it.MediaType), it.Title, nullString(it.PosterPath), toMillis(it.AddedAt)}
	}
}

// UpsertItems inserts or refreshes items keyed by (owner, media_id, media_type).
func (s *SQLStore) UpsertItems(ctx context.Context, c Collection, owner string, items []models.CollectionItem) error {
	table, err := c.table()
	if err != nil {
		return err
	}
	if owner == "" {
		return nil
	}
	// added_at keeps the first insertion time.
	query := `INSERT INTO ` + table + ` (user_id, media_id, media_type, title, poster_path, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, media_id, media_type) DO UPDATE SET
		    title = excluded.title,
		    poster_path = excluded.poster_path`
	if _, err := s.batch(ctx, query, len(items), itemArgs(owner, items)); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// InsertItemsIgnore inserts items without touching existing rows.
func (s *SQLStore) InsertItemsIgnore(ctx context.Context, c Collection, owner string, items []models.CollectionItem) (int, error) {
	table, err := c.table()
	if err != nil {
		return 0, err
	}
	if owner == "" {
		return 0, nil
	}
	query := `INSERT INTO ` + table + ` (user_id, media_id, media_type, title, poster_path, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, media_id, media_type) DO NOTHING`
	n, err := s.batch(ctx, query, len(items), itemArgs(owner, items))
	if err != nil {
		return n, fmt.Errorf("insert %s: %w", table, err)
	}
	return n, nil
}

// DeleteItem removes one item.
func (s *SQLStore) DeleteItem(ctx context.Context, c Collection, owner string, key models.MediaKey) error {
	table, err := c.table()
	if err != nil {
		return err
	}
	if owner == "" {
		return nil
	}
	query := `DELETE FROM ` + table + ` WHERE user_id = $1 AND media_id = $2 AND media_type = $3`
	if _, err := s.db.ExecContext(ctx, query, owner, key.MediaID, string(key.MediaType)); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// Ratings returns every rating of owner.
func (s *SQLStore) Ratings(ctx context.Context, owner string) ([]models.Rating, error) {
	if owner == "" {
		return []models.Rating{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT media_id, media_type, title, poster_path, rating, added_at
		FROM ratings WHERE user_id = $1 ORDER BY added_at, media_id`, owner)
	if err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	defer rows.Close()

	out := []models.Rating{}
	for rows.Next() {
		var (
			r      models.Rating
			poster sql.NullString
			added  int64
		)
		if err := rows.Scan(&r.MediaID, &r.MediaType, &r.Title, &poster, &r.Value, &added); err != nil {
			return nil, fmt.Errorf("scan ratings: %w", err)
		}
		r.PosterPath = stringPtr(poster)
		r.AddedAt = fromMillis(added)
		out = append(out, r)
	}
	return out, rows.Err()
}

func ratingArgs(owner string, ratings []models.Rating) func(i int) []any {
	return func(i int) []any {
		r := ratings[i]
		return []any{owner, r.MediaID, string(r.MediaType), r.Title, nullString(r.PosterPath), r.Value, toMillis(r.AddedAt)}
	}
}

// UpsertRatings inserts or updates ratings keyed by (owner, media_id, media_type).
func (s *SQLStore) UpsertRatings(ctx context.Context, owner string, ratings []models.Rating) error {
	if owner == "" {
		return nil
	}
	const query = `
		INSERT INTO ratings (user_id, media_id, media_type, title, poster_path, rating, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, media_id, media_type) DO UPDATE SET
		    title = excluded.title,
		    poster_path = excluded.poster_path,
		    rating = excluded.rating`
	if _, err := s.batch(ctx, query, len(ratings), ratingArgs(owner, ratings)); err != nil {
		return fmt.Errorf("upsert ratings: %w", err)
	}
	return nil
}

// InsertRatingsIgnore inserts ratings without overwriting existing ones.
func (s *SQLStore) InsertRatingsIgnore(ctx context.Context, owner string, ratings []models.Rating) (int, error) {
	if owner == "" {
		return 0, nil
	}
	const query = `
		INSERT INTO ratings (user_id, media_id, media_type, title, poster_path, rating, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, media_id, media_type) DO NOTHING`
	n, err := s.batch(ctx, query, len(ratings), ratingArgs(owner, ratings))
	if err != nil {
		return n, fmt.Errorf("insert ratings: %w", err)
	}
	return n, nil
}

// DeleteRating removes one rating.
func (s *SQLStore) DeleteRating(ctx context.Context, owner string, key models.MediaKey) error {
	if owner == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM ratings WHERE user_id = $1 AND media_id = $2 AND media_type = $3`,
		owner, key.MediaID, string(key.MediaType))
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}
