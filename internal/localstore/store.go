// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package localstore

import "errors"

// Fixed storage keys.
const (
	KeyFavorites              = "favorites"
	KeyWatchlist              = "watchlist"
	KeyRatings                = "ratings"
	KeyTrackedEpisodes        = "tracked-episodes"
	KeyTrackedShows           = "tracked-shows"
	KeyLists                  = "lists"
	KeyRSSFeeds               = "rss-feeds"
	KeyPendingTrackedShows    = "pending-tracked-shows"
	KeyPendingTrackedEpisodes = "pending-tracked-episodes"
	KeyHistory                = "history"
	KeySession                = "session"
)

// GuestKeys are the guest snapshot keys cleared by the login merge.
var GuestKeys = []string{
	KeyFavorites,
	KeyWatchlist,
	KeyRatings,
	KeyTrackedShows,
	KeyTrackedEpisodes,
}

// ErrClosed is returned by a Store used after Close.
var ErrClosed = errors.New("localstore: store is closed")

// Store is the on-device key-value contract.
type Store interface {
	// GetItem returns the value under key. ok is false when the key is absent.
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error
}
