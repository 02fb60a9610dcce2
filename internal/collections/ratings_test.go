// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/marquee/internal/localstore"
)

func TestRateNormalizesValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{in: 7.3, want: 7.5},
		{in: 0, want: 0.5},
		{in: 12, want: 10},
		{in: 8, want: 8},
	}
	for _, tt := range tests {
		e := newTestEnv(t)
		r := NewRatings(e.deps)
		if err := r.Rate(context.Background(), fightClub(), tt.in).Wait(); err != nil {
			t.Fatalf("Rate(%v): %v", tt.in, err)
		}
		if got, ok := r.Value(fightClub().Key()); !ok || got != tt.want {
			t.Errorf("Rate(%v) stored %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGuestRatingsRoundTrip(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	r := NewRatings(e.deps)
	_ = r.Rate(ctx, fightClub(), 9).Wait()
	_ = r.Rate(ctx, fightClub(), 6).Wait()

	again := NewRatings(e.deps)
	again.Load(ctx)
	items := again.Items()
	if len(items) != 1 || items[0].Value != 6 {
		t.Fatalf("Items = %+v", items)
	}

	_ = again.Remove(ctx, fightClub().Key()).Wait()
	if got := raw(t, e.local, localstore.KeyRatings); got != "[]" {
		t.Errorf("snapshot = %s", got)
	}
}

func TestAuthenticatedRateFailureKeepsLocalValue(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	e.login(t, "7")
	e.account.Fail = func(string) error { return errors.New("timeout") }

	r := NewRatings(e.deps)
	if err := r.Rate(context.Background(), fightClub(), 8).Wait(); err == nil {
		t.Fatal("expected remote failure")
	}
	if v, ok := r.Value(fightClub().Key()); !ok || v != 8 {
		t.Errorf("Value = %v, %v; rate must not roll back", v, ok)
	}
}

func TestAuthenticatedRateWritesBothStores(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()
	e.login(t, "7")

	r := NewRatings(e.deps)
	if err := r.Rate(ctx, fightClub(), 9.5).Wait(); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if v, ok := e.account.RatingOf(fightClub().Key()); !ok || v != 9.5 {
		t.Errorf("account rating = %v, %v", v, ok)
	}
	rows, err := e.profile.Ratings(ctx, "7")
	if err != nil || len(rows) != 1 || rows[0].Value != 9.5 {
		t.Errorf("profile ratings = %+v, %v", rows, err)
	}

	if err := r.Remove(ctx, fightClub().Key()).Wait(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := e.account.RatingOf(fightClub().Key()); ok {
		t.Error("account rating still present")
	}
}
