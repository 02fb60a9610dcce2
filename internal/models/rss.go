// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "time"

// RSSFeed is a news feed subscription. URL is unique per owner.
type RSSFeed struct {
	ID          string    `json:"id" validate:"required,uuid"`
	Name        string    `json:"name" validate:"required,max=200"`
	URL         string    `json:"url" validate:"required,url"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AddedAt     time.Time `json:"added_at"`
}
