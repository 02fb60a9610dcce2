// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "strings"

// LocalListPrefix marks list IDs generated on the device in guest mode.
const LocalListPrefix = "local-"

// UserList is a custom, user-named list of titles.
type UserList struct {
	ID          string     `json:"id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=200"`
	Description *string    `json:"description,omitempty"`
	Count       int        `json:"count" validate:"gte=0"`
	Items       []ListItem `json:"items,omitempty" validate:"dive"`
}

// IsLocal reports whether the list only exists on this device.
func (l UserList) IsLocal() bool {
	return strings.HasPrefix(l.ID, LocalListPrefix)
}

// ListItem is an entry of a UserList.
type ListItem struct {
	MediaID    int64     `json:"media_id" validate:"gt=0"`
	MediaType  MediaType `json:"media_type" validate:"mediatype"`
	Title      string    `json:"title"`
	PosterPath *string   `json:"poster_path,omitempty"`
}

// Key returns the entry's identity.
func (i ListItem) Key() MediaKey {
	return MediaKey{MediaID: i.MediaID, MediaType: i.MediaType}
}
