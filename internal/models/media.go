// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MediaType distinguishes movies from TV shows.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// MediaTypes lists every media type in the order the Account Service is paged.
var MediaTypes = []MediaType{MediaMovie, MediaTV}

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	return t == MediaMovie || t == MediaTV
}

// ParseMediaType parses "movie"/"tv" (also accepting the plural "movies").
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(s) {
	case "movie", "movies":
		return MediaMovie, nil
	case "tv":
		return MediaTV, nil
	}
	return "", fmt.Errorf("unknown media type %q", s)
}

// MediaKey identifies an item in a favorites, watchlist or ratings collection.
type MediaKey struct {
	MediaID   int64     `json:"media_id"`
	MediaType MediaType `json:"media_type"`
}

// String renders the key as "movie:550".
func (k MediaKey) String() string {
	return string(k.MediaType) + ":" + strconv.FormatInt(k.MediaID, 10)
}

// CollectionItem is the shared shape of favorites and watchlist entries.
type CollectionItem struct {
	MediaID    int64     `json:"media_id" validate:"gt=0"`
	MediaType  MediaType `json:"media_type" validate:"mediatype"`
	Title      string    `json:"title" validate:"required,max=500"`
	PosterPath *string   `json:"poster_path,omitempty" validate:"omitempty,imagepath"`
	AddedAt    time.Time `json:"added_at"`
}

// Key returns the item's identity.
func (i CollectionItem) Key() MediaKey {
	return MediaKey{MediaID: i.MediaID, MediaType: i.MediaType}
}

// Rating is a CollectionItem with the user's score.
type Rating struct {
	CollectionItem
	Value float64 `json:"value" validate:"gte=0.5,lte=10"`
}

// Key returns the rated item's identity.
func (r Rating) Key() MediaKey {
	return r.CollectionItem.Key()
}

// Rating bounds accepted by the Account Service.
const (
	MinRating = 0.5
	MaxRating = 10.0
)

// NormalizeRating clamps v to the accepted range and rounds to the nearest half point.
func NormalizeRating(v float64) float64 {
	v = math.Round(v*2) / 2
	if v < MinRating {
		return MinRating
	}
	if v > MaxRating {
		return MaxRating
	}
	return v
}

// HistoryEntry is a recently viewed title.
type HistoryEntry struct {
	CollectionItem
	ViewedAt time.Time `json:"viewed_at"`
}

// Key returns the viewed item's identity.
func (h HistoryEntry) Key() MediaKey {
	return h.CollectionItem.Key()
}

// StringPtr returns nil for "" and &s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
