// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/tomtom215/marquee/internal/collections"
	"github.com/tomtom215/marquee/internal/models"
)

// mediaHandlers serves one flag-style collection (favorites or watchlist).
type mediaHandlers struct {
	coll *collections.MediaCollection
}

func (m mediaHandlers) list(w http.ResponseWriter, r *http.Request) {
	items := m.coll.Items()
	NewResponseWriter(w, r).SuccessList(items, len(items))
}

func (m mediaHandlers) add(w http.ResponseWriter, r *http.Request) {
	var req mediaItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(NewResponseWriter(w, r), err)
		return
	}
	item := req.item()
	t := m.coll.Add(r.Context(), item)
	respondMutation(w, r, t, func() any {
		for _, it := range m.coll.Items() {
			if it.Key() == item.Key() {
				return it
			}
		}
		return nil
	})
}

func (m mediaHandlers) contains(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	key, err := mediaKeyParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	rw.Success(map[string]bool{"present": m.coll.Contains(key)})
}

func (m mediaHandlers) remove(w http.ResponseWriter, r *http.Request) {
	key, err := mediaKeyParam(r)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	respondMutation(w, r, m.coll.Remove(r.Context(), key), nil)
}

// ListRatings returns every rating.
func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	items := h.engine.Ratings.Items()
	NewResponseWriter(w, r).SuccessList(items, len(items))
}

// Rate sets the rating for the item in the path.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	key, err := mediaKeyParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(rw, err)
		return
	}
	item := models.CollectionItem{MediaID: key.MediaID, MediaType: key.MediaType, Title: req.Title, PosterPath: req.PosterPath}
	t := h.engine.Ratings.Rate(r.Context(), item, req.Value)
	respondMutation(w, r, t, func() any {
		v, ok := h.engine.Ratings.Value(key)
		if !ok {
			return nil
		}
		return map[string]any{"media_id": key.MediaID, "media_type": key.MediaType, "value": v}
	})
}

// DeleteRating removes the rating for the item in the path.
func (h *Handler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	key, err := mediaKeyParam(r)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	respondMutation(w, r, h.engine.Ratings.Remove(r.Context(), key), nil)
}
