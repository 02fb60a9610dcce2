// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/collections"
	"github.com/tomtom215/marquee/internal/engine"
	"github.com/tomtom215/marquee/internal/task"
	"github.com/tomtom215/marquee/internal/validation"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the API routes over one engine.
type Handler struct {
	engine *engine.Engine
	// profile is pinged by the readiness probe; nil skips the check.
	profile   Pinger
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(e *engine.Engine, profile Pinger) *Handler {
	return &Handler{engine: e, profile: profile, startTime: time.Now()}
}

// MutationResult is the body of every mutation response.
type MutationResult struct {
	// Item is the local value after the mutation, when the route has one.
	Item any `json:"item,omitempty"`
	// Synced is true once the write reached its authoritative store.
	Synced bool `json:"synced"`
	// SyncError is the remote failure, if the handler waited for one.
	SyncError string `json:"sync_error,omitempty"`
}

// badInput answers 400 for a decode or validation failure.
func badInput(rw *ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		rw.ValidationError(err)
		return
	}
	rw.BadRequest(err.Error())
}

// requestError maps errors a synchronizer returns before any write starts.
func requestError(rw *ResponseWriter, err error) bool {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		rw.ValidationError(err)
	case errors.Is(err, collections.ErrNotFound):
		rw.NotFound(err.Error())
	default:
		return false
	}
	return true
}

func wantsWait(r *http.Request) bool {
	switch r.URL.Query().Get("wait") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// respondMutation answers for a write that may still be running. item is
// evaluated after any wait so it reflects renames done by the remote leg.
func respondMutation(w http.ResponseWriter, r *http.Request, t *task.Task, item func() any) {
	rw := NewResponseWriter(w, r)
	if err := t.Err(); err != nil && requestError(rw, err) {
		return
	}
	value := func() any {
		if item == nil {
			return nil
		}
		return item()
	}

	if !wantsWait(r) {
		select {
		case <-t.Done():
		default:
			rw.Accepted(MutationResult{Item: value()})
			return
		}
	}

	err := t.WaitContext(r.Context())
	if err != nil && requestError(rw, err) {
		return
	}
	res := MutationResult{Item: value(), Synced: err == nil}
	if err != nil {
		res.SyncError = err.Error()
	}
	rw.Success(res)
}
