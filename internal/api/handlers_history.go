// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import "net/http"

// ListHistory returns recently viewed items, newest first.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.engine.History.Entries()
	NewResponseWriter(w, r).SuccessList(entries, len(entries))
}

// RecordHistory records a view. History is device-local, so the write is
// complete when the response is sent.
func (h *Handler) RecordHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req mediaItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(rw, err)
		return
	}
	if err := h.engine.History.Record(req.item()); err != nil {
		if !requestError(rw, err) {
			rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "Failed to record history")
		}
		return
	}
	entries := h.engine.History.Entries()
	rw.SuccessList(entries, len(entries))
}

// ClearHistory removes every history entry.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.engine.History.Clear(); err != nil {
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "Failed to clear history")
		return
	}
	rw.SuccessList([]any{}, 0)
}
