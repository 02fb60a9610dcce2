// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListFeeds returns the RSS subscriptions.
func (h *Handler) ListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds := h.engine.RSS.Feeds()
	NewResponseWriter(w, r).SuccessList(feeds, len(feeds))
}

// AddFeed subscribes to a feed. A URL that is already subscribed is updated
// in place.
func (h *Handler) AddFeed(w http.ResponseWriter, r *http.Request) {
	var req feedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(NewResponseWriter(w, r), err)
		return
	}
	feed, t := h.engine.RSS.Add(r.Context(), req.Name, req.URL, req.Description, req.Category)
	respondMutation(w, r, t, func() any {
		for _, f := range h.engine.RSS.Feeds() {
			if f.ID == feed.ID {
				return f
			}
		}
		return nil
	})
}

// RemoveFeed unsubscribes from a feed.
func (h *Handler) RemoveFeed(w http.ResponseWriter, r *http.Request) {
	respondMutation(w, r, h.engine.RSS.Remove(r.Context(), chi.URLParam(r, "feedID")), nil)
}
