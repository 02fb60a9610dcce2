// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/engine"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/merge"
)

// loginResponse is returned by a successful login.
type loginResponse struct {
	Status engine.Status `json:"status"`
	Merge  merge.Report  `json:"merge"`
}

// SessionStatus returns the engine status for the current session.
func (h *Handler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Status())
}

// RequestToken starts the Account Service approval handshake.
func (h *Handler) RequestToken(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	token, err := h.engine.RequestToken(r.Context())
	if err != nil {
		rw.ExternalServiceError("account", err)
		return
	}
	rw.Created(map[string]string{"request_token": token})
}

// Login creates a session and runs the login merge.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badInput(rw, err)
		return
	}

	var (
		report merge.Report
		err    error
	)
	if req.SessionToken != "" {
		report, err = h.engine.LoginSession(r.Context(), req.SessionToken)
	} else {
		report, err = h.engine.Login(r.Context(), req.RequestToken)
	}
	switch {
	case errors.Is(err, engine.ErrAlreadyAuthenticated):
		rw.Conflict("A session is already active")
		return
	case errors.Is(err, account.ErrRejected), errors.Is(err, account.ErrNoSession):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Login rejected")
		rw.Unauthorized("The Account Service rejected the token")
		return
	case err != nil:
		rw.ExternalServiceError("account", err)
		return
	}
	rw.Success(loginResponse{Status: h.engine.Status(), Merge: report})
}

// Logout ends the session and returns to guest mode.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.engine.Logout(r.Context()); err != nil {
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "Failed to clear the session")
		logging.Ctx(r.Context()).Error().Err(err).Msg("Logout failed")
		return
	}
	rw.Success(h.engine.Status())
}

// LastMerge returns the report of the most recent login merge.
func (h *Handler) LastMerge(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	report, ok := h.engine.LastMerge()
	if !ok {
		rw.NotFound("No login merge has run")
		return
	}
	rw.Success(report)
}

// Refresh re-pulls every collection from the authenticated stores.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.engine.Session.Authenticated() {
		rw.Unauthorized("Refresh requires a session")
		return
	}
	h.engine.Refresh(r.Context())
	rw.Success(h.engine.Status())
}
