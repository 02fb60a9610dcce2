// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package session tracks the current Account Service session for this device.
//
// The session is the ownership switch for every collection: with a session the
// Profile Store and Account Service are authoritative, without one the Local
// Store is. The manager persists it under a fixed local key so a restart
// comes back in the same mode.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/state"
)

// ErrIncomplete is returned by Begin for a session without a user id or token.
var ErrIncomplete = errors.New("session: user id and token are required")

// Manager owns the current session.
type Manager struct {
	store localstore.Store
	state *state.Store[models.Session]
	log   zerolog.Logger
}

// NewManager creates a Manager in guest mode. Call Restore to pick up a persisted session.
func NewManager(store localstore.Store, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		state: state.New(models.Session{}),
		log:   log,
	}
}

// Restore loads the persisted session, if any, and returns it.
// A stored document without identity or token is discarded.
func (m *Manager) Restore() models.Session {
	s, ok := localstore.ReadValue[models.Session](m.store, localstore.KeySession)
	if !ok {
		return models.Session{}
	}
	if !s.Authenticated() {
		m.log.Warn().Msg("Discarding incomplete persisted session")
		if err := m.store.RemoveItem(localstore.KeySession); err != nil {
			m.log.Warn().Err(err).Msg("Failed to remove persisted session")
		}
		return models.Session{}
	}
	m.state.Set(s)
	m.log.Info().Str("user_id", s.UserID).Msg("Session restored")
	return s
}

// Current returns the active session; the zero value means guest mode.
func (m *Manager) Current() models.Session {
	return m.state.Get()
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	return m.state.Get().Authenticated()
}

// Begin persists s and makes it current.
func (m *Manager) Begin(s models.Session) error {
	if !s.Authenticated() {
		return ErrIncomplete
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if err := localstore.WriteValue(m.store, localstore.KeySession, s); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.state.Set(s)
	m.log.Info().Str("user_id", s.UserID).Msg("Session started")
	return nil
}

// End drops the current session and returns to guest mode.
func (m *Manager) End() error {
	prev := m.state.Get()
	m.state.Set(models.Session{})
	if err := m.store.RemoveItem(localstore.KeySession); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	if prev.Authenticated() {
		m.log.Info().Str("user_id", prev.UserID).Msg("Session ended")
	}
	return nil
}

// Subscribe registers cb for session transitions.
func (m *Manager) Subscribe(cb func(models.Session)) (unsubscribe func()) {
	return m.state.Subscribe(cb)
}
