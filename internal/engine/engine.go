// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package engine wires the synchronizers, the session manager and the login
// merge into one object that the HTTP API and the supervisor drive.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/collections"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/merge"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/retry"
	"github.com/tomtom215/marquee/internal/session"
	"github.com/tomtom215/marquee/internal/tracker"
)

// ErrAlreadyAuthenticated is returned by Login while a session is active.
var ErrAlreadyAuthenticated = errors.New("engine: already authenticated")

// Deps are the stores and settings the engine is built from.
type Deps struct {
	Local   localstore.Store
	Profile profile.Store
	Account account.Service
	Sync    config.SyncConfig
}

// Engine owns every synchronizer for one device.
type Engine struct {
	Session   *session.Manager
	Favorites *collections.MediaCollection
	Watchlist *collections.MediaCollection
	Ratings   *collections.Ratings
	Lists     *collections.Lists
	History   *collections.History
	RSS       *collections.RSS
	Tracker   *tracker.Tracker

	account account.Service
	merger  *merge.Orchestrator
	log     zerolog.Logger

	// transition serializes Login, Logout and Refresh.
	transition sync.Mutex
	lastMerge  atomic.Pointer[merge.Report]
	lastLoad   atomic.Int64
}

// New builds an Engine. Nothing is loaded until Init.
func New(d Deps) *Engine {
	sessions := session.NewManager(d.Local, logging.WithComponent("session"))
	policy := retry.Policy{MaxRetries: d.Sync.MaxRetries, BaseDelay: d.Sync.RetryBaseDelay}
	cd := collections.Deps{
		Local:   d.Local,
		Profile: d.Profile,
		Account: d.Account,
		Session: sessions,
		Retry:   policy,
	}

	return &Engine{
		Session:   sessions,
		Favorites: collections.NewFavorites(cd),
		Watchlist: collections.NewWatchlist(cd),
		Ratings:   collections.NewRatings(cd),
		Lists:     collections.NewLists(cd),
		History:   collections.NewHistory(cd, d.Sync.HistoryLimit),
		RSS:       collections.NewRSS(cd),
		Tracker: tracker.New(tracker.Deps{
			Local:              d.Local,
			Profile:            d.Profile,
			Session:            sessions,
			Retry:              policy,
			QueueEpisodeWrites: d.Sync.QueueEpisodeWrites,
		}),
		account: d.Account,
		merger: merge.New(merge.Deps{
			Local:       d.Local,
			Profile:     d.Profile,
			Account:     d.Account,
			Concurrency: d.Sync.MergeConcurrency,
		}),
		log: logging.WithComponent("engine"),
	}
}

// Init restores a persisted session and loads every synchronizer.
func (e *Engine) Init(ctx context.Context) models.Session {
	e.transition.Lock()
	defer e.transition.Unlock()

	s := e.Session.Restore()
	e.log.Info().Bool("authenticated", s.Authenticated()).Str("user_id", s.UserID).Msg("Session restored")
	e.loadAll(ctx)
	return s
}

// RequestToken starts the Account Service approval handshake. The caller
// sends the user to approve the token and then passes it to Login.
func (e *Engine) RequestToken(ctx context.Context) (string, error) {
	return e.account.CreateRequestToken(ctx)
}

// Login exchanges an approved request token for a session and completes it
// with LoginSession.
func (e *Engine) Login(ctx context.Context, requestToken string) (merge.Report, error) {
	if e.Session.Authenticated() {
		return merge.Report{}, ErrAlreadyAuthenticated
	}
	token, err := e.account.CreateSession(ctx, requestToken)
	if err != nil {
		return merge.Report{}, fmt.Errorf("create session: %w", err)
	}
	return e.LoginSession(ctx, token)
}

// LoginSession adopts an existing session token: it resolves the account,
// persists the session, runs the login merge and reloads every synchronizer
// from the authenticated stores. Merge step failures are reported, not returned.
func (e *Engine) LoginSession(ctx context.Context, sessionToken string) (merge.Report, error) {
	e.transition.Lock()
	defer e.transition.Unlock()

	if e.Session.Authenticated() {
		return merge.Report{}, ErrAlreadyAuthenticated
	}
	p, err := e.account.Account(ctx, sessionToken)
	if err != nil {
		return merge.Report{}, fmt.Errorf("resolve account: %w", err)
	}
	s := models.Session{UserID: p.UserID, Token: sessionToken}
	if !s.Authenticated() {
		return merge.Report{}, fmt.Errorf("resolve account: %w", session.ErrIncomplete)
	}

	report, err := e.merger.Run(ctx, s)
	switch {
	case errors.Is(err, merge.ErrAlreadyRan):
		e.log.Debug().Str("user_id", s.UserID).Msg("Merge already ran for this session")
	case err != nil:
		return merge.Report{}, err
	default:
		e.lastMerge.Store(&report)
	}

	if err := e.Session.Begin(s); err != nil {
		return report, fmt.Errorf("persist session: %w", err)
	}
	e.log.Info().Str("user_id", s.UserID).Bool("merge_failed", report.Failed()).Msg("Logged in")
	e.loadAll(ctx)
	return report, nil
}

// Logout ends the session. The remote session is deleted on a best-effort
// basis. Staged tracker writes stay queued under their owner and replay on
// that user's next login.
func (e *Engine) Logout(ctx context.Context) error {
	e.transition.Lock()
	defer e.transition.Unlock()

	s := e.Session.Current()
	if !s.Authenticated() {
		return nil
	}
	if err := e.account.DeleteSession(ctx, s.Token); err != nil {
		e.log.Warn().Err(err).Str("user_id", s.UserID).Msg("Remote session delete failed")
	}
	if err := e.Session.End(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	e.log.Info().Str("user_id", s.UserID).Msg("Logged out")
	e.loadAll(ctx)
	return nil
}

// Refresh re-reads the authenticated stores to pick up changes made on other
// devices. Pending tracker writes are flushed first. It does nothing in guest mode.
func (e *Engine) Refresh(ctx context.Context) {
	e.transition.Lock()
	defer e.transition.Unlock()

	if !e.Session.Authenticated() {
		return
	}
	e.loadAll(ctx)
}

// LastMerge returns the report of the most recent login merge.
func (e *Engine) LastMerge() (merge.Report, bool) {
	r := e.lastMerge.Load()
	if r == nil {
		return merge.Report{}, false
	}
	return *r, true
}

// Status summarizes the engine for health and session endpoints.
type Status struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	LastLoad      *time.Time `json:"last_load,omitempty"`
	Favorites     int        `json:"favorites"`
	Watchlist     int        `json:"watchlist"`
	Ratings       int        `json:"ratings"`
	Lists         int        `json:"lists"`
	TrackedShows  int        `json:"tracked_shows"`
	RSSFeeds      int        `json:"rss_feeds"`
	PendingWrites int        `json:"pending_writes"`
}

// Status returns a point-in-time summary.
func (e *Engine) Status() Status {
	s := e.Session.Current()
	st := Status{
		Authenticated: s.Authenticated(),
		UserID:        s.UserID,
		Favorites:     e.Favorites.Len(),
		Watchlist:     e.Watchlist.Len(),
		Ratings:       len(e.Ratings.Items()),
		Lists:         len(e.Lists.All()),
		TrackedShows:  len(e.Tracker.Shows()),
		RSSFeeds:      len(e.RSS.Feeds()),
		PendingWrites: e.Tracker.PendingShows().Len() + e.Tracker.PendingEpisodes().Len(),
	}
	if ms := e.lastLoad.Load(); ms > 0 {
		t := time.UnixMilli(ms).UTC()
		st.LastLoad = &t
	}
	return st
}

// loadAll loads every synchronizer concurrently. Each one isolates its own
// failures, so a panic is the only thing that can escape.
func (e *Engine) loadAll(ctx context.Context) {
	start := time.Now()
	var wg conc.WaitGroup
	for _, load := range []func(context.Context){
		e.Favorites.Load,
		e.Watchlist.Load,
		e.Ratings.Load,
		e.Lists.Load,
		e.History.Load,
		e.RSS.Load,
		e.Tracker.Load,
	} {
		wg.Go(func() { load(ctx) })
	}
	wg.Wait()
	e.lastLoad.Store(time.Now().UnixMilli())
	e.log.Debug().Dur("duration", time.Since(start)).Msg("Synchronizers loaded")
}
