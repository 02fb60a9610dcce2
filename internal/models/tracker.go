// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TrackedShow is a TV show the user follows episode by episode.
type TrackedShow struct {
	ShowID      int64     `json:"show_id" validate:"gt=0"`
	Name        string    `json:"name" validate:"required,max=500"`
	PosterPath  *string   `json:"poster_path,omitempty" validate:"omitempty,imagepath"`
	LastUpdated time.Time `json:"last_updated"`
}

// ShowMeta is the caller-supplied metadata used to create or refresh a TrackedShow.
type ShowMeta struct {
	Name       string  `json:"name" validate:"required,max=500"`
	PosterPath *string `json:"poster_path,omitempty" validate:"omitempty,imagepath"`
}

// EpisodeKey identifies one watched episode.
type EpisodeKey struct {
	ShowID  int64 `json:"show_id" validate:"gt=0"`
	Season  int   `json:"season_number" validate:"gte=0"`
	Episode int   `json:"episode_number" validate:"gt=0"`
}

// String renders the key as "showId:season:episode".
func (k EpisodeKey) String() string {
	return strconv.FormatInt(k.ShowID, 10) + ":" + strconv.Itoa(k.Season) + ":" + strconv.Itoa(k.Episode)
}

// ParseEpisodeKey parses the "showId:season:episode" form.
func ParseEpisodeKey(s string) (EpisodeKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return EpisodeKey{}, fmt.Errorf("episode key %q: want showId:season:episode", s)
	}
	show, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || show <= 0 {
		return EpisodeKey{}, fmt.Errorf("episode key %q: bad show id", s)
	}
	season, err := strconv.Atoi(parts[1])
	if err != nil || season < 0 {
		return EpisodeKey{}, fmt.Errorf("episode key %q: bad season", s)
	}
	episode, err := strconv.Atoi(parts[2])
	if err != nil || episode <= 0 {
		return EpisodeKey{}, fmt.Errorf("episode key %q: bad episode", s)
	}
	return EpisodeKey{ShowID: show, Season: season, Episode: episode}, nil
}

// TrackerSnapshot is the combined tracker read: shows plus watched episodes.
type TrackerSnapshot struct {
	Shows    []TrackedShow `json:"shows"`
	Episodes []EpisodeKey  `json:"episodes"`
}
