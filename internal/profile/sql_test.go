// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/models"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	cfg := config.ProfileConfig{
		Driver:  "sqlite",
		DSN:     "file:" + filepath.Join(t.TempDir(), "profile.db"),
		Migrate: true,
	}
	s, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func movie(id int64, title string) models.CollectionItem {
	return models.CollectionItem{
		MediaID:   id,
		MediaType: models.MediaMovie,
		Title:     title,
		AddedAt:   time.UnixMilli(1_700_000_000_000 + id).UTC(),
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(context.Background(), config.ProfileConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.GetProfile(ctx, "7")
	if err != nil || got != nil {
		t.Fatalf("GetProfile before insert = %v, %v", got, err)
	}

	p := models.Profile{UserID: "7", Username: "ana", Name: "Ana"}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	p.Name = "Ana B"
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile update: %v", err)
	}
	got, err = s.GetProfile(ctx, "7")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got == nil || got.Name != "Ana B" || got.Username != "ana" {
		t.Errorf("GetProfile = %+v", got)
	}
}

func TestItemsUpsertIgnoreDelete(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertItems(ctx, Favorites, "7", []models.CollectionItem{movie(550, "Fight Club")}); err != nil {
		t.Fatalf("UpsertItems: %v", err)
	}
	// Upsert of an existing key updates the title and does not duplicate.
	if err := s.UpsertItems(ctx, Favorites, "7", []models.CollectionItem{movie(550, "Fight Club (1999)")}); err != nil {
		t.Fatalf("UpsertItems again: %v", err)
	}

	n, err := s.InsertItemsIgnore(ctx, Favorites, "7", []models.CollectionItem{movie(550, "Other"), movie(13, "Forrest Gump")})
	if err != nil {
		t.Fatalf("InsertItemsIgnore: %v", err)
	}
	if n != 1 {
		t.Errorf("InsertItemsIgnore inserted %d rows, want 1", n)
	}

	items, err := s.Items(ctx, Favorites, "7")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	byID := map[int64]string{}
	for _, it := range items {
		byID[it.MediaID] = it.Title
	}
	if byID[550] != "Fight Club (1999)" {
		t.Errorf("title of 550 = %q", byID[550])
	}

	// Watchlist is a separate table.
	wl, err := s.Items(ctx, Watchlist, "7")
	if err != nil || len(wl) != 0 {
		t.Errorf("Watchlist = %v, %v", wl, err)
	}

	if err := s.DeleteItem(ctx, Favorites, "7", models.MediaKey{MediaID: 550, MediaType: models.MediaMovie}); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	items, _ = s.Items(ctx, Favorites, "7")
	if len(items) != 1 || items[0].MediaID != 13 {
		t.Errorf("after delete items = %+v", items)
	}
}

func TestUnknownCollection(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	if _, err := s.Items(context.Background(), Collection("ratings"), "7"); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}

func TestEmptyOwnerIsNoop(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertItems(ctx, Favorites, "", []models.CollectionItem{movie(1, "x")}); err != nil {
		t.Fatalf("UpsertItems: %v", err)
	}
	if err := s.UpsertTrackedShows(ctx, "", []models.TrackedShow{{ShowID: 1, Name: "x"}}); err != nil {
		t.Fatalf("UpsertTrackedShows: %v", err)
	}
	items, err := s.Items(ctx, Favorites, "")
	if err != nil || len(items) != 0 {
		t.Errorf("Items(\"\") = %v, %v", items, err)
	}
	snap, err := s.Tracker(ctx, "")
	if err != nil || len(snap.Shows) != 0 || snap.Episodes == nil {
		t.Errorf("Tracker(\"\") = %+v, %v", snap, err)
	}
}

func TestRatings(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	r := models.Rating{CollectionItem: movie(550, "Fight Club"), Value: 8}
	if err := s.UpsertRatings(ctx, "7", []models.Rating{r}); err != nil {
		t.Fatalf("UpsertRatings: %v", err)
	}
	// Ignore keeps the server value.
	r.Value = 3
	n, err := s.InsertRatingsIgnore(ctx, "7", []models.Rating{r})
	if err != nil || n != 0 {
		t.Fatalf("InsertRatingsIgnore = %d, %v", n, err)
	}
	got, err := s.Ratings(ctx, "7")
	if err != nil {
		t.Fatalf("Ratings: %v", err)
	}
	if len(got) != 1 || got[0].Value != 8 {
		t.Fatalf("Ratings = %+v", got)
	}

	r.Value = 6.5
	if err := s.UpsertRatings(ctx, "7", []models.Rating{r}); err != nil {
		t.Fatalf("UpsertRatings update: %v", err)
	}
	got, _ = s.Ratings(ctx, "7")
	if got[0].Value != 6.5 {
		t.Errorf("rating = %v, want 6.5", got[0].Value)
	}

	if err := s.DeleteRating(ctx, "7", r.Key()); err != nil {
		t.Fatalf("DeleteRating: %v", err)
	}
	got, _ = s.Ratings(ctx, "7")
	if len(got) != 0 {
		t.Errorf("Ratings after delete = %+v", got)
	}
}

func TestTrackerKeepsEpisodesOnUntrack(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	show := models.TrackedShow{ShowID: 1399, Name: "Game of Thrones", LastUpdated: time.Now()}
	if err := s.UpsertTrackedShows(ctx, "7", []models.TrackedShow{show}); err != nil {
		t.Fatalf("UpsertTrackedShows: %v", err)
	}
	eps := []models.EpisodeKey{
		{ShowID: 1399, Season: 1, Episode: 1},
		{ShowID: 1399, Season: 1, Episode: 2},
	}
	if err := s.UpsertWatchedEpisodes(ctx, "7", eps); err != nil {
		t.Fatalf("UpsertWatchedEpisodes: %v", err)
	}
	// Repeating a watched mark is harmless.
	if err := s.UpsertWatchedEpisodes(ctx, "7", eps[:1]); err != nil {
		t.Fatalf("UpsertWatchedEpisodes repeat: %v", err)
	}

	n, err := s.InsertTrackedShowsIgnore(ctx, "7", []models.TrackedShow{{ShowID: 1399, Name: "Other"}})
	if err != nil || n != 0 {
		t.Fatalf("InsertTrackedShowsIgnore = %d, %v", n, err)
	}

	if err := s.DeleteTrackedShow(ctx, "7", 1399); err != nil {
		t.Fatalf("DeleteTrackedShow: %v", err)
	}
	snap, err := s.Tracker(ctx, "7")
	if err != nil {
		t.Fatalf("Tracker: %v", err)
	}
	if len(snap.Shows) != 0 {
		t.Errorf("shows = %+v, want none", snap.Shows)
	}
	if len(snap.Episodes) != 2 {
		t.Errorf("episodes = %+v, want 2", snap.Episodes)
	}

	if err := s.DeleteWatchedEpisodes(ctx, "7", eps[1:]); err != nil {
		t.Fatalf("DeleteWatchedEpisodes: %v", err)
	}
	snap, _ = s.Tracker(ctx, "7")
	if len(snap.Episodes) != 1 || snap.Episodes[0] != eps[0] {
		t.Errorf("episodes after delete = %+v", snap.Episodes)
	}
}

func TestListsLifecycle(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	desc := "weekend picks"
	list := models.UserList{ID: "42", Name: "Weekend", Description: &desc}
	if err := s.UpsertList(ctx, "7", list); err != nil {
		t.Fatalf("UpsertList: %v", err)
	}
	items := []models.ListItem{
		{MediaID: 550, MediaType: models.MediaMovie, Title: "Fight Club"},
		{MediaID: 1399, MediaType: models.MediaTV, Title: "Game of Thrones"},
	}
	if err := s.ReplaceListItems(ctx, "7", "42", items); err != nil {
		t.Fatalf("ReplaceListItems: %v", err)
	}
	if err := s.UpsertListItem(ctx, "7", "42", models.ListItem{MediaID: 13, MediaType: models.MediaMovie, Title: "Forrest Gump"}); err != nil {
		t.Fatalf("UpsertListItem: %v", err)
	}

	got, err := s.ListItems(ctx, "7", "42")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(got) != 3 || got[0].MediaID != 550 || got[2].MediaID != 13 {
		t.Fatalf("ListItems = %+v", got)
	}

	lists, err := s.Lists(ctx, "7")
	if err != nil {
		t.Fatalf("Lists: %v", err)
	}
	if len(lists) != 1 || lists[0].Count != 3 || models.StringValue(lists[0].Description) != desc {
		t.Fatalf("Lists = %+v", lists)
	}

	if err := s.DeleteListItem(ctx, "7", "42", models.MediaKey{MediaID: 550, MediaType: models.MediaMovie}); err != nil {
		t.Fatalf("DeleteListItem: %v", err)
	}
	lists, _ = s.Lists(ctx, "7")
	if lists[0].Count != 2 {
		t.Errorf("count after delete = %d, want 2", lists[0].Count)
	}

	if err := s.DeleteList(ctx, "7", "42"); err != nil {
		t.Fatalf("DeleteList: %v", err)
	}
	lists, _ = s.Lists(ctx, "7")
	got, _ = s.ListItems(ctx, "7", "42")
	if len(lists) != 0 || len(got) != 0 {
		t.Errorf("after DeleteList lists=%v items=%v", lists, got)
	}
}

func TestFeedsUniqueByURL(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	first := models.RSSFeed{
		ID:      "0b8a3c1e-6f0e-4d1a-9a55-1c2d3e4f5a6b",
		Name:    "Trailers",
		URL:     "https://example.com/trailers.xml",
		AddedAt: time.Now(),
	}
	if err := s.UpsertFeed(ctx, "7", first); err != nil {
		t.Fatalf("UpsertFeed: %v", err)
	}
	dup := first
	dup.ID = "9f1e2d3c-4b5a-4c6d-8e7f-0a1b2c3d4e5f"
	dup.Name = "Trailers HD"
	if err := s.UpsertFeed(ctx, "7", dup); err != nil {
		t.Fatalf("UpsertFeed dup: %v", err)
	}

	feeds, err := s.Feeds(ctx, "7")
	if err != nil {
		t.Fatalf("Feeds: %v", err)
	}
	if len(feeds) != 1 {
		t.Fatalf("len(feeds) = %d, want 1", len(feeds))
	}
	if feeds[0].ID != first.ID || feeds[0].Name != "Trailers HD" {
		t.Errorf("feed = %+v", feeds[0])
	}

	if err := s.DeleteFeed(ctx, "7", first.ID); err != nil {
		t.Fatalf("DeleteFeed: %v", err)
	}
	feeds, _ = s.Feeds(ctx, "7")
	if len(feeds) != 0 {
		t.Errorf("feeds after delete = %+v", feeds)
	}
}
