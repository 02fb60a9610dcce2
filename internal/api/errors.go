// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import "errors"

var (
	// errBodyTooLarge is returned when a request body exceeds maxBodyBytes.
	errBodyTooLarge = errors.New("request body too large")

	// errEmptyBody is returned when a JSON body is required but missing.
	errEmptyBody = errors.New("request body is required")
)
