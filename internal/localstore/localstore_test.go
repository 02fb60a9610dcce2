// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package localstore

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// backends returns each Store implementation under test.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	mem, err := OpenBadger(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger(in-memory): %v", err)
	}
	t.Cleanup(func() { _ = mem.Close() })

	disk, err := OpenBadger(BadgerConfig{Path: filepath.Join(t.TempDir(), "local")})
	if err != nil {
		t.Fatalf("OpenBadger(disk): %v", err)
	}
	t.Cleanup(func() { _ = disk.Close() })

	return map[string]Store{
		"memory":        NewMemoryStore(),
		"badger-memory": mem,
		"badger-disk":   disk,
	}
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.GetItem(KeyFavorites); ok || err != nil {
				t.Fatalf("GetItem(absent) = ok %v, err %v", ok, err)
			}
			if err := s.SetItem(KeyFavorites, "[1]"); err != nil {
				t.Fatalf("SetItem: %v", err)
			}
			v, ok, err := s.GetItem(KeyFavorites)
			if err != nil || !ok || v != "[1]" {
				t.Fatalf("GetItem = %q, %v, %v", v, ok, err)
			}
			if err := s.RemoveItem(KeyFavorites); err != nil {
				t.Fatalf("RemoveItem: %v", err)
			}
			if err := s.RemoveItem(KeyFavorites); err != nil {
				t.Fatalf("RemoveItem(absent): %v", err)
			}
			if _, ok, _ := s.GetItem(KeyFavorites); ok {
				t.Error("key still present after RemoveItem")
			}
		})
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "local")
	s, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	if err := s.SetItem(KeySession, `{"user_id":"7"}`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v, want ErrClosed", err)
	}
	if err := s.SetItem(KeySession, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetItem after Close = %v, want ErrClosed", err)
	}

	reopened, err := OpenBadger(BadgerConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.GetItem(KeySession)
	if err != nil || !ok || v != `{"user_id":"7"}` {
		t.Errorf("GetItem after reopen = %q, %v, %v", v, ok, err)
	}
	if err := reopened.RunGC(0.5); err != nil {
		t.Errorf("RunGC: %v", err)
	}
}

func TestOpenBadgerRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := OpenBadger(BadgerConfig{}); err == nil {
		t.Error("OpenBadger without path should fail")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	items := []models.CollectionItem{
		{MediaID: 550, MediaType: models.MediaMovie, Title: "Fight Club", PosterPath: models.StringPtr("/x.jpg"), AddedAt: time.UnixMilli(1700000000000).UTC()},
		{MediaID: 1399, MediaType: models.MediaTV, Title: "Game of Thrones"},
	}
	if err := WriteSnapshot(s, KeyFavorites, items); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	got := ReadSnapshot[models.CollectionItem](s, KeyFavorites)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Key() != items[0].Key() || models.StringValue(got[0].PosterPath) != "/x.jpg" {
		t.Errorf("first item = %+v", got[0])
	}
}

func TestReadSnapshotDropsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "corrupt document", raw: "{not json", want: 0},
		{name: "not an array", raw: `{"media_id":1}`, want: 0},
		{name: "empty array", raw: "[]", want: 0},
		{
			name: "mixed records",
			raw: `[
				{"media_id":550,"media_type":"movie","title":"Fight Club"},
				{"media_id":0,"media_type":"movie","title":"zero id"},
				{"media_id":12,"media_type":"book","title":"bad type"},
				{"media_id":13,"media_type":"tv"},
				"garbage",
				{"media_id":1399,"media_type":"tv","title":"GoT","poster_path":"/p.jpg"}
			]`,
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewMemoryStore()
			_ = s.SetItem(KeyWatchlist, tt.raw)
			got := ReadSnapshot[models.CollectionItem](s, KeyWatchlist)
			if got == nil {
				t.Fatal("ReadSnapshot returned nil")
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestWriteSnapshotNil(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if err := WriteSnapshot[models.Rating](s, KeyRatings, nil); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if v, _, _ := s.GetItem(KeyRatings); v != "[]" {
		t.Errorf("stored %q, want []", v)
	}
}

func TestReadStrings(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	_ = s.SetItem(KeyTrackedEpisodes, `["100:1:1","100:1:2"]`)
	got := ReadStrings(s, KeyTrackedEpisodes)
	sort.Strings(got)
	if len(got) != 2 || got[0] != "100:1:1" {
		t.Errorf("ReadStrings = %v", got)
	}

	_ = s.SetItem(KeyTrackedEpisodes, `[1,2]`)
	if got := ReadStrings(s, KeyTrackedEpisodes); len(got) != 0 {
		t.Errorf("ReadStrings(corrupt) = %v, want empty", got)
	}
}

func TestReadWriteValue(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if _, ok := ReadValue[models.Session](s, KeySession); ok {
		t.Fatal("ReadValue(absent) ok = true")
	}
	want := models.Session{UserID: "7", Token: "tok"}
	if err := WriteValue(s, KeySession, want); err != nil {
		t.Fatalf("WriteValue: %v", err)
	}
	got, ok := ReadValue[models.Session](s, KeySession)
	if !ok || got.UserID != "7" || got.Token != "tok" {
		t.Errorf("ReadValue = %+v, %v", got, ok)
	}

	_ = s.SetItem(KeySession, "nope")
	if _, ok := ReadValue[models.Session](s, KeySession); ok {
		t.Error("ReadValue(corrupt) ok = true")
	}
}
