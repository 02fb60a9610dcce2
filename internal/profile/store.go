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

// Collection selects one of the two flag-style media tables.
type Collection string

const (
	Favorites Collection = "favorites"
	Watchlist Collection = "watchlist"
)

func (c Collection) table() (string, error) {
	switch c {
	case Favorites, Watchlist:
		return string(c), nil
	}
	return "", fmt.Errorf("profile: unknown collection %q", c)
}

// Store is the Profile Store contract.
type Store interface {
	UpsertProfile(ctx context.Context, p models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	Items(ctx context.Context, c Collection, owner string) ([]models.CollectionItem, error)
	UpsertItems(ctx context.Context, c Collection, owner string, items []models.CollectionItem) error
	// InsertItemsIgnore inserts items whose key is not present yet and
	// returns how many rows were added.
	InsertItemsIgnore(ctx context.Context, c Collection, owner string, items []models.CollectionItem) (int, error)
	DeleteItem(ctx context.Context, c Collection, owner string, key models.MediaKey) error

	Ratings(ctx context.Context, owner string) ([]models.Rating, error)
	UpsertRatings(ctx context.Context, owner string, ratings []models.Rating) error
	InsertRatingsIgnore(ctx context.Context, owner string, ratings []models.Rating) (int, error)
	DeleteRating(ctx context.Context, owner string, key models.MediaKey) error

	// Tracker returns tracked shows and watched episodes in one read.
	Tracker(ctx context.Context, owner string) (models.TrackerSnapshot, error)
	UpsertTrackedShows(ctx context.Context, owner string, shows []models.TrackedShow) error
	InsertTrackedShowsIgnore(ctx context.Context, owner string, shows []models.TrackedShow) (int, error)
	DeleteTrackedShow(ctx context.Context, owner string, showID int64) error
	UpsertWatchedEpisodes(ctx context.Context, owner string, episodes []models.EpisodeKey) error
	DeleteWatchedEpisodes(ctx context.Context, owner string, episodes []models.EpisodeKey) error

	Lists(ctx context.Context, owner string) ([]models.UserList, error)
	UpsertList(ctx context.Context, owner string, list models.UserList) error
	DeleteList(ctx context.Context, owner, listID string) error
	ListItems(ctx context.Context, owner, listID string) ([]models.ListItem, error)
	ReplaceListItems(ctx context.Context, owner, listID string, items []models.ListItem) error
	UpsertListItem(ctx context.Context, owner, listID string, item models.ListItem) error
	DeleteListItem(ctx context.Context, owner, listID string, key models.MediaKey) error

	Feeds(ctx context.Context, owner string) ([]models.RSSFeed, error)
	// UpsertFeed inserts or updates by (owner, url).
	UpsertFeed(ctx context.Context, owner string, feed models.RSSFeed) error
	DeleteFeed(ctx context.Context, owner, id string) error
}
