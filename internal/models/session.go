// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "time"

// Session is an authenticated Account Service session. The zero value means guest mode.
type Session struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"session_token"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticated reports whether the session carries both identity and token.
func (s Session) Authenticated() bool {
	return s.UserID != "" && s.Token != ""
}

// Profile is the display record stored for an account in the Profile Store.
type Profile struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	AvatarPath string `json:"avatar_path,omitempty"`
}
