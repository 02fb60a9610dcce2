// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/engine"
	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
)

type testServer struct {
	engine  *engine.Engine
	account *account.Fake
	profile *profile.SQLStore
	handler http.Handler
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, cfg config.ServerConfig, pinger Pinger) *testServer {
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

	fake := account.NewFake()
	fake.AddAccount(models.Profile{UserID: "7", Username: "ana"}, "sess-7")
	eng := engine.New(engine.Deps{Local: localstore.NewMemoryStore(), Profile: store, Account: fake})
	eng.Init(context.Background())

	if pinger == nil {
		pinger = store
	}
	router := NewRouter(NewHandler(eng, pinger), cfg)
	return &testServer{engine: eng, account: fake, profile: store, handler: router.SetupChi()}
}

func newDefaultServer(t *testing.T) *testServer {
	return newTestServer(t, config.ServerConfig{RateLimitOff: true}, nil)
}

// envelope mirrors APIResponse with a raw payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d: %s", rec.Code, want, rec.Body.String())
	}
}

func fightClubBody() map[string]any {
	return map[string]any{"media_id": 550, "media_type": "movie", "title": "Fight Club", "poster_path": "/x.jpg"}
}
