// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import (
	"errors"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/retry"
	"github.com/tomtom215/marquee/internal/session"
)

// Collection names used in logs and metrics.
const (
	NameFavorites = "favorites"
	NameWatchlist = "watchlist"
	NameRatings   = "ratings"
	NameLists     = "lists"
	NameHistory   = "history"
	NameRSS       = "rss"
)

const (
	modeGuest         = "guest"
	modeAuthenticated = "authenticated"
	modeLocal         = "local"
)

// ErrNotFound is returned by mutations that address a list or feed that does not exist.
var ErrNotFound = errors.New("collections: not found")

// Deps are the collaborators shared by every synchronizer.
type Deps struct {
	Local   localstore.Store
	Profile profile.Store
	Account account.Service
	Session *session.Manager
	// Retry wraps Profile Store writes.
	Retry retry.Policy
}
