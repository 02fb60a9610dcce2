// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/retry"
	"github.com/tomtom215/marquee/internal/session"
)

type testEnv struct {
	local   *localstore.MemoryStore
	profile *profile.SQLStore
	account *account.Fake
	session *session.Manager
	deps    Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := profile.Open(context.Background(), config.ProfileConfig{
		Driver:  "sqlite",
		DSN:     "file:" + filepath.Join(t.TempDir(), "profile.db"),
		Migrate: true,
	})
	if err != nil {
		t.Fatalf("open profile store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	e := &testEnv{
		local:   localstore.NewMemoryStore(),
		profile: store,
		account: account.NewFake(),
	}
	e.session = session.NewManager(e.local, logging.NewTestLogger(io.Discard))
	e.deps = Deps{
		Local:   e.local,
		Profile: store,
		Account: e.account,
		Session: e.session,
		Retry:   retry.Policy{MaxRetries: 0},
	}
	return e
}

func (e *testEnv) login(t *testing.T, userID string) models.Session {
	t.Helper()
	s := models.Session{UserID: userID, Token: "session-" + userID}
	e.account.AddAccount(models.Profile{UserID: userID, Username: "user" + userID}, s.Token)
	if err := e.session.Begin(s); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return s
}

func fightClub() models.CollectionItem {
	return models.CollectionItem{
		MediaID:    550,
		MediaType:  models.MediaMovie,
		Title:      "Fight Club",
		PosterPath: models.StringPtr("/x.jpg"),
	}
}

func gameOfThrones() models.CollectionItem {
	return models.CollectionItem{MediaID: 1399, MediaType: models.MediaTV, Title: "Game of Thrones"}
}

func raw(t *testing.T, s localstore.Store, key string) string {
	t.Helper()
	v, _, err := s.GetItem(key)
	if err != nil {
		t.Fatalf("GetItem(%s): %v", key, err)
	}
	return v
}
