// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"fmt"

	"github.com/tomtom215/marquee/internal/models"
)

// Feeds returns owner's RSS subscriptions, oldest first.
func (s *SQLStore) Feeds(ctx context.Context, owner string) ([]models.RSSFeed, error) {
	if owner == "" {
		return []models.RSSFeed{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, url, description, category, added_at
		FROM rss_feeds WHERE user_id = $1 ORDER BY added_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("select feeds: %w", err)
	}
	defer rows.Close()

	out := []models.RSSFeed{}
	for rows.Next() {
		var (
			f     models.RSSFeed
			added int64
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.URL, &f.Description, &f.Category, &added); err != nil {
			return nil, fmt.Errorf("scan feeds: %w", err)
		}
		f.AddedAt = fromMillis(added)
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpsertFeed stores a feed. A second feed with the same URL updates the
// existing row and keeps its id.
func (s *SQLStore) UpsertFeed(ctx context.Context, owner string, feed models.RSSFeed) error {
	if owner == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rss_feeds (user_id, id, name, url, description, category, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, url) DO UPDATE SET
		    name = excluded.name,
		    description = excluded.description,
		    category = excluded.category`,
		owner, feed.ID, feed.Name, feed.URL, feed.Description, feed.Category, toMillis(feed.AddedAt))
	if err != nil {
		return fmt.Errorf("upsert feed %s: %w", feed.URL, err)
	}
	return nil
}

// DeleteFeed removes a feed by id.
func (s *SQLStore) DeleteFeed(ctx context.Context, owner, id string) error {
	if owner == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rss_feeds WHERE user_id = $1 AND id = $2`, owner, id); err != nil {
		return fmt.Errorf("delete feed %s: %w", id, err)
	}
	return nil
}
