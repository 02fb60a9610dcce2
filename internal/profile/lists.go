// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// Lists returns list metadata for owner. Items are read with ListItems.
func (s *SQLStore) Lists(ctx context.Context, owner string) ([]models.UserList, error) {
	if owner == "" {
		return []models.UserList{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT list_id, name, description, item_count
		FROM user_lists WHERE user_id = $1 ORDER BY created_at, list_id`, owner)
	if err != nil {
		return nil, fmt.Errorf("select lists: %w", err)
	}
	defer rows.Close()

	out := []models.UserList{}
	for rows.Next() {
		var (
			l    models.UserList
			desc sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &desc, &l.Count); err != nil {
			return nil, fmt.Errorf("scan lists: %w", err)
		}
		l.Description = stringPtr(desc)
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertList creates or renames a list. created_at is set on first insert only.
func (s *SQLStore) UpsertList(ctx context.Context, owner string, list models.UserList) error {
	if owner == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_lists (user_id, list_id, name, description, item_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, list_id) DO UPDATE SET
		    name = excluded.name,
		    description = excluded.description,
		    item_count = excluded.item_count`,
		owner, list.ID, list.Name, nullString(list.Description), list.Count, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert list %s: %w", list.ID, err)
	}
	return nil
}

// DeleteList removes a list and its items.
func (s *SQLStore) DeleteList(ctx context.Context, owner, listID string) error {
	if owner == "" {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_list_items WHERE user_id = $1 AND list_id = $2`, owner, listID); err != nil {
			return fmt.Errorf("delete list items %s: %w", listID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_lists WHERE user_id = $1 AND list_id = $2`, owner, listID); err != nil {
			return fmt.Errorf("delete list %s: %w", listID, err)
		}
		return nil
	})
}

// ListItems returns the items of one list in position order.
func (s *SQLStore) ListItems(ctx context.Context, owner, listID string) ([]models.ListItem, error) {
	if owner == "" {
		return []models.ListItem{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT media_id, media_type, title, poster_path
		FROM user_list_items WHERE user_id = $1 AND list_id = $2
		ORDER BY position, media_id`, owner, listID)
	if err != nil {
		return nil, fmt.Errorf("select list items %s: %w", listID, err)
	}
	defer rows.Close()

	out := []models.ListItem{}
	for rows.Next() {
		var (
			it     models.ListItem
			poster sql.NullString
		)
		if err := rows.Scan(&it.MediaID, &it.MediaType, &it.Title, &poster); err != nil {
			return nil, fmt.Errorf("scan list items %s: %w", listID, err)
		}
		it.PosterPath = stringPtr(poster)
		out = append(out, it)
	}
	return out, rows.Err()
}

// ReplaceListItems overwrites the item set of a list and its item_count.
func (s *SQLStore) ReplaceListItems(ctx context.Context, owner, listID string, items []models.ListItem) error {
	if owner == "" {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_list_items WHERE user_id = $1 AND list_id = $2`, owner, listID); err != nil {
			return fmt.Errorf("clear list items %s: %w", listID, err)
		}
		for i, it := range items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO user_list_items (user_id, list_id, media_id, media_type, title, poster_path, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (user_id, list_id, media_id, media_type) DO NOTHING`,
				owner, listID, it.MediaID, string(it.MediaType), it.Title, nullString(it.PosterPath), i); err != nil {
				return fmt.Errorf("insert list item %s: %w", listID, err)
			}
		}
		return setListCount(ctx, tx, owner, listID)
	})
}

// UpsertListItem appends an item to a list, refreshing its title when present.
func (s *SQLStore) UpsertListItem(ctx context.Context, owner, listID string, item models.ListItem) error {
	if owner == "" {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_list_items (user_id, list_id, media_id, media_type, title, poster_path, position)
			VALUES ($1, $2, $3, $4, $5, $6,
			    (SELECT COALESCE(MAX(position), -1) + 1 FROM user_list_items WHERE user_id = $1 AND list_id = $2))
			ON CONFLICT (user_id, list_id, media_id, media_type) DO UPDATE SET
			    title = excluded.title,
			    poster_path = excluded.poster_path`,
			owner, listID, item.MediaID, string(item.MediaType), item.Title, nullString(item.PosterPath)); err != nil {
			return fmt.Errorf("upsert list item %s: %w", listID, err)
		}
		return setListCount(ctx, tx, owner, listID)
	})
}

// DeleteListItem removes one item from a list.
func (s *SQLStore) DeleteListItem(ctx context.Context, owner, listID string, key models.MediaKey) error {
	if owner == "" {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM user_list_items
			WHERE user_id = $1 AND list_id = $2 AND media_id = $3 AND media_type = $4`,
			owner, listID, key.MediaID, string(key.MediaType)); err != nil {
			return fmt.Errorf("delete list item %s: %w", listID, err)
		}
		return setListCount(ctx, tx, owner, listID)
	})
}

func setListCount(ctx context.Context, tx *sql.Tx, owner, listID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE user_lists SET item_count =
		    (SELECT COUNT(*) FROM user_list_items WHERE user_id = $1 AND list_id = $2)
		WHERE user_id = $1 AND list_id = $2`, owner, listID)
	if err != nil {
		return fmt.Errorf("update list count %s: %w", listID, err)
	}
	return nil
}
