// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/config"
)

// Router builds the HTTP routing tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router with middleware configured from cfg.
func NewRouter(h *Handler, cfg config.ServerConfig) *Router {
	mw := DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.CORSOrigins
	if cfg.RateLimitReqs > 0 {
		mw.RateLimitRequests = cfg.RateLimitReqs
	}
	if cfg.RateLimitWindow > 0 {
		mw.RateLimitWindow = cfg.RateLimitWindow
	}
	mw.RateLimitDisabled = cfg.RateLimitOff
	return &Router{handler: h, chiMiddleware: NewChiMiddleware(mw)}
}

// SetupChi returns the root handler.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.SessionStatus)
			r.Get("/merge", h.LastMerge)
			r.Delete("/", h.Logout)
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitLogin())
				r.Post("/token", h.RequestToken)
				r.Post("/", h.Login)
			})
		})
		r.With(router.chiMiddleware.RateLimitRefresh()).Post("/sync/refresh", h.Refresh)

		for path, coll := range map[string]mediaHandlers{
			"/favorites": {coll: h.engine.Favorites},
			"/watchlist": {coll: h.engine.Watchlist},
		} {
			r.Route(path, func(r chi.Router) {
				r.Get("/", coll.list)
				r.Post("/", coll.add)
				r.Get("/{mediaType}/{mediaID}", coll.contains)
				r.Delete("/{mediaType}/{mediaID}", coll.remove)
			})
		}

		r.Route("/ratings", func(r chi.Router) {
			r.Get("/", h.ListRatings)
			r.Put("/{mediaType}/{mediaID}", h.Rate)
			r.Delete("/{mediaType}/{mediaID}", h.DeleteRating)
		})

		r.Route("/tracker", func(r chi.Router) {
			r.Get("/", h.TrackerSnapshot)
			r.Post("/shows", h.TrackShow)
			r.Delete("/shows/{showID}", h.UntrackShow)
			r.Get("/shows/{showID}/episodes", h.ShowEpisodes)
			r.Post("/episodes/toggle", h.ToggleEpisode)
			r.Post("/seasons", h.MarkSeason)
			r.With(router.chiMiddleware.RateLimitRefresh()).Post("/refresh", h.RefreshTracker)
		})

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", h.ListLists)
			r.Post("/", h.CreateList)
			r.Get("/{listID}", h.GetList)
			r.Delete("/{listID}", h.DeleteList)
			r.Post("/{listID}/items", h.AddListItem)
			r.Delete("/{listID}/items/{mediaType}/{mediaID}", h.RemoveListItem)
		})

		r.Route("/rss", func(r chi.Router) {
			r.Get("/", h.ListFeeds)
			r.Post("/", h.AddFeed)
			r.Delete("/{feedID}", h.RemoveFeed)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.ListHistory)
			r.Post("/", h.RecordHistory)
			r.Delete("/", h.ClearHistory)
		})
	})

	return r
}
