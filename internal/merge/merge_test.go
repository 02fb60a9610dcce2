// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package merge

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/collections"
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
	orch    *Orchestrator
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

	e := &testEnv{local: localstore.NewMemoryStore(), profile: store, account: account.NewFake()}
	e.account.PageSize = 2
	e.account.AddAccount(models.Profile{UserID: "7", Username: "ana", Name: "Ana"}, "tok-1")
	e.account.AddAccount(models.Profile{UserID: "7", Username: "ana", Name: "Ana"}, "tok-2")
	e.orch = New(Deps{Local: e.local, Profile: store, Account: e.account, Concurrency: 4})
	return e
}

func session7(token string) models.Session {
	return models.Session{UserID: "7", Token: token}
}

func movie(id int64, title string) models.CollectionItem {
	return models.CollectionItem{MediaID: id, MediaType: models.MediaMovie, Title: title}
}

func TestGuestAddThenLogin(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	sessions := session.NewManager(e.local, logging.NewTestLogger(io.Discard))
	favs := collections.NewFavorites(collections.Deps{
		Local: e.local, Profile: e.profile, Account: e.account, Session: sessions, Retry: retry.Policy{},
	})
	item := models.CollectionItem{MediaID: 550, MediaType: models.MediaMovie, Title: "Fight Club", PosterPath: models.StringPtr("/x.jpg")}
	if err := favs.Add(ctx, item).Wait(); err != nil {
		t.Fatalf("guest Add: %v", err)
	}

	report, err := e.orch.Run(ctx, session7("tok-1"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed() {
		t.Fatalf("report has errors: %+v", report.Steps)
	}

	rows, err := e.profile.Items(ctx, profile.Favorites, "7")
	if err != nil || len(rows) != 1 || rows[0].MediaID != 550 || rows[0].MediaType != models.MediaMovie {
		t.Fatalf("profile favorites = %+v, %v", rows, err)
	}
	if _, ok, _ := e.local.GetItem(localstore.KeyFavorites); ok {
		t.Error("guest favorites key still present")
	}
	if !e.account.HasFavorite(item.Key()) {
		t.Error("guest favorite was not pushed to the account service")
	}
	if p, _ := e.profile.GetProfile(ctx, "7"); p == nil || p.Username != "ana" {
		t.Errorf("profile = %+v", p)
	}
}

func TestRunOncePerSession(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ran     int
		skipped int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.orch.Run(ctx, session7("tok-1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ran++
			case errors.Is(err, ErrAlreadyRan):
				skipped++
			default:
				t.Errorf("Run: %v", err)
			}
		}()
	}
	wg.Wait()
	if ran != 1 || skipped != 4 {
		t.Errorf("ran = %d, skipped = %d", ran, skipped)
	}
	if got := e.account.Calls("Account"); got != 1 {
		t.Errorf("Account calls = %d, want 1", got)
	}
}

func TestRunRequiresSession(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	if _, err := e.orch.Run(context.Background(), models.Session{}); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestPullMakesAccountAuthoritative(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	// Five remote favorites across three pages, one stale profile row.
	for id := int64(1); id <= 5; id++ {
		e.account.SeedFavorite(movie(id, "remote"))
	}
	_ = e.profile.UpsertItems(ctx, profile.Favorites, "7", []models.CollectionItem{movie(99, "stale")})

	report, err := e.orch.Run(ctx, session7("tok-1"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rows, _ := e.profile.Items(ctx, profile.Favorites, "7")
	if len(rows) != 5 {
		t.Fatalf("profile favorites = %+v, want 5 rows", rows)
	}
	for _, r := range rows {
		if r.MediaID == 99 {
			t.Error("stale row was not deleted")
		}
	}
	pull, _ := report.Step(StepPull)
	if pull.Items["favorites"] != 5 || pull.Items["favorites_deleted"] != 1 {
		t.Errorf("pull counts = %+v", pull.Items)
	}
}

func TestGuestNeverOverridesRemote(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	e.account.SeedRating(models.Rating{CollectionItem: movie(550, "Fight Club"), Value: 8})
	_ = localstore.WriteSnapshot(e.local, localstore.KeyRatings, []models.Rating{
		{CollectionItem: movie(550, "Fight Club"), Value: 3},
		{CollectionItem: movie(13, "Forrest Gump"), Value: 9},
	})

	if _, err := e.orch.Run(ctx, session7("tok-1")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	ratings, _ := e.profile.Ratings(ctx, "7")
	values := map[int64]float64{}
	for _, r := range ratings {
		values[r.MediaID] = r.Value
	}
	if values[550] != 8 || values[13] != 9 {
		t.Errorf("ratings = %v", values)
	}
	if v, _ := e.account.RatingOf(models.MediaKey{MediaID: 13, MediaType: models.MediaMovie}); v != 9 {
		t.Errorf("pushed rating = %v, want 9", v)
	}
	if v, _ := e.account.RatingOf(models.MediaKey{MediaID: 550, MediaType: models.MediaMovie}); v != 8 {
		t.Errorf("remote rating changed to %v", v)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	e.account.SeedWatchlist(movie(1, "remote"))
	_ = localstore.WriteSnapshot(e.local, localstore.KeyWatchlist, []models.CollectionItem{movie(2, "guest")})
	_ = localstore.WriteSnapshot(e.local, localstore.KeyTrackedShows, []models.TrackedShow{{ShowID: 1399, Name: "Game of Thrones"}})
	_ = localstore.WriteSnapshot(e.local, localstore.KeyTrackedEpisodes, []string{"1399:1:1"})

	if _, err := e.orch.Run(ctx, session7("tok-1")); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	firstItems, _ := e.profile.Items(ctx, profile.Watchlist, "7")
	firstTracker, _ := e.profile.Tracker(ctx, "7")
	pushes := e.account.Calls("SetWatchlist")

	second, err := e.orch.Run(ctx, session7("tok-2"))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	secondItems, _ := e.profile.Items(ctx, profile.Watchlist, "7")
	secondTracker, _ := e.profile.Tracker(ctx, "7")

	if len(firstItems) != 2 || len(secondItems) != len(firstItems) {
		t.Fatalf("watchlist first = %+v, second = %+v", firstItems, secondItems)
	}
	for i := range firstItems {
		if firstItems[i].Key() != secondItems[i].Key() {
			t.Errorf("row %d: %v vs %v", i, firstItems[i].Key(), secondItems[i].Key())
		}
	}
	if len(firstTracker.Shows) != 1 || len(secondTracker.Shows) != 1 || len(secondTracker.Episodes) != 1 {
		t.Errorf("tracker first = %+v, second = %+v", firstTracker, secondTracker)
	}
	if extra := e.account.Calls("SetWatchlist") - pushes; extra != 0 {
		t.Errorf("second run pushed %d items, want 0", extra)
	}
	if push, _ := second.Step(StepPush); push.Items["watchlist"] != 0 {
		t.Errorf("second push counts = %+v", push.Items)
	}
}

func TestStepFailuresAreIsolated(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	e.account.SeedWatchlist(movie(1, "remote"))
	_ = e.profile.UpsertItems(ctx, profile.Favorites, "7", []models.CollectionItem{movie(42, "keep")})
	_ = localstore.WriteSnapshot(e.local, localstore.KeyFavorites, []models.CollectionItem{movie(550, "guest")})
	e.account.Fail = func(op string) error {
		if op == "Favorites" || op == "SetFavorite" {
			return errors.New("upstream 502")
		}
		return nil
	}

	report, err := e.orch.Run(ctx, session7("tok-1"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Failed() {
		t.Fatal("expected step errors")
	}

	// A failed favorites fetch must not wipe the profile rows.
	favs, _ := e.profile.Items(ctx, profile.Favorites, "7")
	if len(favs) != 2 {
		t.Errorf("favorites = %+v, want existing + guest", favs)
	}
	wl, _ := e.profile.Items(ctx, profile.Watchlist, "7")
	if len(wl) != 1 {
		t.Errorf("watchlist = %+v", wl)
	}
	clearStep, _ := report.Step(StepClear)
	if len(clearStep.Errors) != 0 {
		t.Errorf("clear errors = %v", clearStep.Errors)
	}
	if _, ok, _ := e.local.GetItem(localstore.KeyFavorites); ok {
		t.Error("guest key kept after failed steps")
	}
}

func TestPushPanicIsRecorded(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	_ = e.profile.UpsertItems(ctx, profile.Favorites, "7", []models.CollectionItem{movie(42, "local only")})
	e.account.Fail = func(op string) error {
		if op == "SetFavorite" {
			panic("nil map in client")
		}
		return nil
	}

	report, err := e.orch.Run(ctx, session7("tok-1"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	push, ok := report.Step(StepPush)
	if !ok || len(push.Errors) != 1 || !strings.Contains(push.Errors[0], "panic") {
		t.Fatalf("push step = %+v", push)
	}
	// Later steps still run.
	if _, ok := report.Step(StepClear); !ok {
		t.Error("clear step skipped after push panic")
	}
}
