// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/engine"
)

// Version is reported by the health endpoint. Set at build time with -ldflags.
var Version = "dev"

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status           string        `json:"status"`
	Version          string        `json:"version"`
	ProfileConnected bool          `json:"profile_connected"`
	Uptime           float64       `json:"uptime_seconds"`
	Engine           engine.Status `json:"engine"`
}

func (h *Handler) profileReachable(ctx context.Context) bool {
	if h.profile == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.profile.Ping(ctx) == nil
}

// Health reports overall status. A Profile Store outage degrades the
// service; guest mode keeps working without it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.profileReachable(r.Context())
	status := "healthy"
	if !connected {
		status = "degraded"
	}
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:           status,
		Version:          Version,
		ProfileConnected: connected,
		Uptime:           time.Since(h.startTime).Seconds(),
		Engine:           h.engine.Status(),
	})
}

// HealthLive always answers 200 while the process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady answers 503 until the Profile Store is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.profileReachable(r.Context()) {
		rw.ServiceUnavailable("Profile store unreachable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
