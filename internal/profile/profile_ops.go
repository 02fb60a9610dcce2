// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// UpsertProfile stores the display record for an account.
func (s *SQLStore) UpsertProfile(ctx context.Context, p models.Profile) error {
	if p.UserID == "" {
		return nil
	}
	const query = `
		INSERT INTO profiles (user_id, username, name, avatar_path, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
		    username = excluded.username,
		    name = excluded.name,
		    avatar_path = excluded.avatar_path,
		    updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, p.UserID, p.Username, p.Name, p.AvatarPath, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored profile, or nil when there is none.
func (s *SQLStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, nil
	}
	p := &models.Profile{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, name, avatar_path FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Username, &p.Name, &p.AvatarPath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}
