// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/models"
)

// ErrRejected marks a write the Account Service answered with success=false.
// Synchronizers wrap it when a false result triggers a rollback.
var ErrRejected = errors.New("account: write rejected")

// ErrNoSession is returned by operations that cannot run without a session token.
var ErrNoSession = errors.New("account: no session")

// Page is one page of a paginated collection read.
type Page[T any] struct {
	Page       int `json:"page"`
	Results    []T `json:"results"`
	TotalPages int `json:"total_pages"`
}

// Service is the Account Service contract used by the synchronizers and the merge.
type Service interface {
	CreateRequestToken(ctx context.Context) (string, error)
	CreateSession(ctx context.Context, requestToken string) (string, error)
	DeleteSession(ctx context.Context, sessionToken string) error
	Account(ctx context.Context, sessionToken string) (models.Profile, error)

	SetFavorite(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64, favorite bool) (bool, error)
	SetWatchlist(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64, watchlist bool) (bool, error)
	Rate(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64, value float64) (bool, error)
	DeleteRating(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64) (bool, error)

	Favorites(ctx context.Context, s models.Session, mediaType models.MediaType, page int) (Page[models.CollectionItem], error)
	Watchlist(ctx context.Context, s models.Session, mediaType models.MediaType, page int) (Page[models.CollectionItem], error)
	Ratings(ctx context.Context, s models.Session, mediaType models.MediaType, page int) (Page[models.Rating], error)

	// CreateList returns 0 when the service did not create a list.
	CreateList(ctx context.Context, s models.Session, name, description string) (int64, error)
	AddToList(ctx context.Context, s models.Session, listID, mediaID int64) (bool, error)
	RemoveFromList(ctx context.Context, s models.Session, listID, mediaID int64) (bool, error)
	DeleteList(ctx context.Context, s models.Session, listID int64) (bool, error)
	// ListDetails returns nil when the list does not exist.
	ListDetails(ctx context.Context, s models.Session, listID int64) (*models.UserList, error)
}

// maxPages guards FetchAll against a server that never stops paging.
const maxPages = 500

// FetchAll walks every page of a paginated read, starting at page 1 and
// continuing while page <= total_pages.
func FetchAll[T any](ctx context.Context, fetch func(ctx context.Context, page int) (Page[T], error)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		p, err := fetch(ctx, page)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, p.Results...)
		if page >= p.TotalPages || page >= maxPages {
			return all, nil
		}
	}
}
