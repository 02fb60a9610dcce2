// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListLists returns list metadata.
func (h *Handler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists := h.engine.Lists.All()
	NewResponseWriter(w, r).SuccessList(lists, len(lists))
}

// CreateList creates an empty list. While authenticated the id in a 202
// answer is provisional; it keeps working after the server id is assigned.
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(NewResponseWriter(w, r), err)
		return
	}
	id, t := h.engine.Lists.Create(r.Context(), req.Name, req.Description)
	respondMutation(w, r, t, func() any {
		if list, ok := h.engine.Lists.Get(id); ok {
			return list
		}
		return nil
	})
}

// GetList returns one list with its items.
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "listID")
	list, ok := h.engine.Lists.Get(id)
	if !ok {
		rw.NotFound("List not found")
		return
	}
	list.Items = h.engine.Lists.Items(r.Context(), list.ID)
	rw.Success(list)
}

// DeleteList removes a list.
func (h *Handler) DeleteList(w http.ResponseWriter, r *http.Request) {
	respondMutation(w, r, h.engine.Lists.Delete(r.Context(), chi.URLParam(r, "listID")), nil)
}

// AddListItem appends an item to a list.
func (h *Handler) AddListItem(w http.ResponseWriter, r *http.Request) {
	var req listItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(NewResponseWriter(w, r), err)
		return
	}
	id := chi.URLParam(r, "listID")
	respondMutation(w, r, h.engine.Lists.AddItem(r.Context(), id, req.item()), func() any {
		if list, ok := h.engine.Lists.Get(id); ok {
			return list
		}
		return nil
	})
}

// RemoveListItem removes an item from a list.
func (h *Handler) RemoveListItem(w http.ResponseWriter, r *http.Request) {
	key, err := mediaKeyParam(r)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	respondMutation(w, r, h.engine.Lists.RemoveItem(r.Context(), chi.URLParam(r, "listID"), key), nil)
}
