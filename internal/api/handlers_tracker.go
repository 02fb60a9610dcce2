// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/task"
)

// TrackerSnapshot returns every tracked show and watched episode.
func (h *Handler) TrackerSnapshot(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Tracker.Snapshot())
}

// TrackShow starts tracking a show.
func (h *Handler) TrackShow(w http.ResponseWriter, r *http.Request) {
	var req trackShowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(NewResponseWriter(w, r), err)
		return
	}
	t := h.engine.Tracker.TrackShow(r.Context(), req.ShowID, models.ShowMeta{Name: req.Name, PosterPath: req.PosterPath})
	respondMutation(w, r, t, func() any {
		if show, ok := h.engine.Tracker.Show(req.ShowID); ok {
			return show
		}
		return nil
	})
}

// UntrackShow stops tracking a show. Its watched episodes are kept.
func (h *Handler) UntrackShow(w http.ResponseWriter, r *http.Request) {
	showID, err := int64Param(r, "showID")
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	respondMutation(w, r, h.engine.Tracker.UntrackShow(r.Context(), showID), nil)
}

// ShowEpisodes returns the watched episodes of one show.
func (h *Handler) ShowEpisodes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	showID, err := int64Param(r, "showID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	eps := h.engine.Tracker.WatchedEpisodes(showID)
	rw.SuccessList(eps, len(eps))
}

// ToggleEpisode flips the watched state of one episode.
func (h *Handler) ToggleEpisode(w http.ResponseWriter, r *http.Request) {
	var req toggleEpisodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(NewResponseWriter(w, r), err)
		return
	}
	t := h.engine.Tracker.ToggleWatched(r.Context(), req.ShowID, req.Season, req.Episode, req.Show)
	respondMutation(w, r, t, func() any {
		return map[string]any{
			"episode": models.EpisodeKey{ShowID: req.ShowID, Season: req.Season, Episode: req.Episode}.String(),
			"watched": h.engine.Tracker.IsWatched(req.ShowID, req.Season, req.Episode),
		}
	})
}

// MarkSeason marks a set of episodes watched or unwatched in one write.
func (h *Handler) MarkSeason(w http.ResponseWriter, r *http.Request) {
	var req seasonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(NewResponseWriter(w, r), err)
		return
	}
	tr := h.engine.Tracker
	var t *task.Task
	if req.Watched {
		t = tr.MarkSeasonWatched(r.Context(), req.ShowID, req.Season, req.Episodes, req.Show)
	} else {
		t = tr.MarkSeasonUnwatched(r.Context(), req.ShowID, req.Season, req.Episodes)
	}
	respondMutation(w, r, t, func() any {
		eps := tr.WatchedEpisodes(req.ShowID)
		return map[string]any{"show_id": req.ShowID, "watched": eps}
	})
}

// RefreshTracker re-reads the tracker from the Profile Store.
func (h *Handler) RefreshTracker(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.engine.Session.Authenticated() {
		rw.Unauthorized("Refresh requires a session")
		return
	}
	h.engine.Tracker.RefreshFromServer(r.Context())
	rw.Success(h.engine.Tracker.Snapshot())
}
