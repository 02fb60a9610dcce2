// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package account

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/models"
)

var testSession = models.Session{UserID: "7", Token: "sess-7"}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(config.AccountConfig{BaseURL: srv.URL, APIKey: "key", Timeout: 5 * time.Second})
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSetFavoriteRequest(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/account/7/favorite" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("session_id") != "sess-7" || r.URL.Query().Get("api_key") != "key" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "status_code": 1})
	})

	ok, err := c.SetFavorite(context.Background(), testSession, models.MediaMovie, 550, true)
	if err != nil || !ok {
		t.Fatalf("SetFavorite = %v, %v", ok, err)
	}
	if gotBody["media_type"] != "movie" || gotBody["favorite"] != true || gotBody["media_id"] != float64(550) {
		t.Errorf("body = %v", gotBody)
	}
}

func TestWritesWithoutSessionSkipIO(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	ctx := context.Background()
	guest := models.Session{}

	if ok, err := c.SetWatchlist(ctx, guest, models.MediaTV, 1, true); ok || err != nil {
		t.Errorf("SetWatchlist = %v, %v", ok, err)
	}
	if ok, err := c.Rate(ctx, guest, models.MediaMovie, 1, 8); ok || err != nil {
		t.Errorf("Rate = %v, %v", ok, err)
	}
	if id, err := c.CreateList(ctx, guest, "x", ""); id != 0 || err != nil {
		t.Errorf("CreateList = %v, %v", id, err)
	}
	p, err := c.Favorites(ctx, guest, models.MediaMovie, 1)
	if err != nil || len(p.Results) != 0 {
		t.Errorf("Favorites = %+v, %v", p, err)
	}
	if l, err := c.ListDetails(ctx, guest, 5); l != nil || err != nil {
		t.Errorf("ListDetails = %v, %v", l, err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hits = %d, want 0", hits.Load())
	}
}

func TestWriteRejectedAndFailed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    map[string]any
		wantOK  bool
		wantErr bool
	}{
		{name: "created", status: http.StatusCreated, body: map[string]any{"success": true}, wantOK: true},
		{name: "success false", status: http.StatusOK, body: map[string]any{"success": false}},
		{name: "unauthorized", status: http.StatusUnauthorized, body: map[string]any{"status_code": 3, "status_message": "Authentication failed"}},
		{name: "not found", status: http.StatusNotFound, body: map[string]any{"status_code": 34}},
		{name: "server error", status: http.StatusInternalServerError, body: map[string]any{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			ok, err := c.DeleteRating(context.Background(), testSession, models.MediaMovie, 550)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var se *StatusError
				if !errors.As(err, &se) || se.HTTPStatus != tt.status {
					t.Errorf("err = %v, want *StatusError %d", err, tt.status)
				}
			}
		})
	}
}

func TestRateNormalizesValue(t *testing.T) {
	t.Parallel()

	var got float64
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1399/rating" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			Value float64 `json:"value"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body.Value
		writeJSON(w, http.StatusCreated, map[string]any{"success": true})
	})

	if _, err := c.Rate(context.Background(), testSession, models.MediaTV, 1399, 12.3); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if got != 10 {
		t.Errorf("sent value = %v, want 10", got)
	}
}

func TestFetchAllFavorites(t *testing.T) {
	t.Parallel()

	var pages []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/7/favorite/movies" {
			t.Errorf("path = %s", r.URL.Path)
		}
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		results := []map[string]any{{"id": 550, "title": "Fight Club", "poster_path": "/x.jpg"}}
		if page == "2" {
			results = []map[string]any{{"id": 680, "title": "Pulp Fiction"}}
		}
		n, _ := strconv.Atoi(page)
		writeJSON(w, http.StatusOK, map[string]any{"page": n, "results": results, "total_pages": 2})
	})

	items, err := FetchAll(context.Background(), func(ctx context.Context, page int) (Page[models.CollectionItem], error) {
		return c.Favorites(ctx, testSession, models.MediaMovie, page)
	})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %+v", items)
	}
	if strings.Join(pages, ",") != "1,2" {
		t.Errorf("pages = %v, want 1,2", pages)
	}
	if items[0].Title != "Fight Club" || models.StringValue(items[0].PosterPath) != "/x.jpg" || items[0].MediaType != models.MediaMovie {
		t.Errorf("first = %+v", items[0])
	}
}

func TestRatingsTVUsesName(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/7/rated/tv" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"page":        1,
			"results":     []map[string]any{{"id": 1399, "name": "Game of Thrones", "rating": 9}},
			"total_pages": 1,
		})
	})

	p, err := c.Ratings(context.Background(), testSession, models.MediaTV, 1)
	if err != nil || len(p.Results) != 1 {
		t.Fatalf("Ratings = %+v, %v", p, err)
	}
	if r := p.Results[0]; r.Title != "Game of Thrones" || r.Value != 9 || r.MediaType != models.MediaTV {
		t.Errorf("rating = %+v", r)
	}
}

func TestFetchAllStopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	_, err := FetchAll(context.Background(), func(context.Context, int) (Page[int], error) {
		calls++
		if calls == 2 {
			return Page[int]{}, boom
		}
		return Page[int]{Results: []int{calls}, TotalPages: 5}, nil
	})
	if !errors.Is(err, boom) || calls != 2 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestSessionHandoff(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/authentication/token/new":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "request_token": "rt"})
		case "/authentication/session/new":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["request_token"] != "rt" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "status_code": 17})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": "sess"})
		case "/account":
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 7, "username": "tyler", "name": "Tyler",
				"avatar": map[string]any{"tmdb": map[string]any{"avatar_path": "/a.png"}},
			})
		case "/authentication/session":
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	rt, err := c.CreateRequestToken(ctx)
	if err != nil || rt != "rt" {
		t.Fatalf("CreateRequestToken = %q, %v", rt, err)
	}
	sess, err := c.CreateSession(ctx, rt)
	if err != nil || sess != "sess" {
		t.Fatalf("CreateSession = %q, %v", sess, err)
	}
	if _, err := c.CreateSession(ctx, "bogus"); err == nil {
		t.Error("CreateSession(bogus) should fail")
	}
	p, err := c.Account(ctx, sess)
	if err != nil || p.UserID != "7" || p.Username != "tyler" || p.AvatarPath != "/a.png" {
		t.Errorf("Account = %+v, %v", p, err)
	}
	if err := c.DeleteSession(ctx, sess); err != nil {
		t.Errorf("DeleteSession: %v", err)
	}
}

func TestListDetails(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/list/42":
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "42", "name": "Noir", "description": "", "item_count": 1,
				"items": []map[string]any{{"id": 550, "title": "Fight Club", "media_type": "movie"}},
			})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"status_code": 34})
		}
	})

	l, err := c.ListDetails(context.Background(), testSession, 42)
	if err != nil || l == nil {
		t.Fatalf("ListDetails = %v, %v", l, err)
	}
	if l.ID != "42" || l.Name != "Noir" || l.Count != 1 || l.Description != nil || len(l.Items) != 1 {
		t.Errorf("list = %+v", l)
	}

	missing, err := c.ListDetails(context.Background(), testSession, 43)
	if err != nil || missing != nil {
		t.Errorf("ListDetails(missing) = %v, %v", missing, err)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 15; i++ {
		_, _ = c.SetFavorite(context.Background(), testSession, models.MediaMovie, 1, true)
	}
	if got := hits.Load(); got != 10 {
		t.Errorf("server hits = %d, want 10 before the circuit opens", got)
	}
}
