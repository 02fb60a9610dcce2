// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package merge

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/tracker"
)

// remoteSets records what step 2 saw on the Account Service. A nil map means
// the fetch failed and nothing is known.
type remoteSets struct {
	favorites map[models.MediaKey]struct{}
	watchlist map[models.MediaKey]struct{}
	ratings   map[models.MediaKey]float64
}

// isolate runs fn, converting a returned error or a panic into a step error
// so one collection cannot abort the others.
func isolate(r *StepResult, collection string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(fmt.Errorf("%s: panic: %v", collection, p))
		}
	}()
	if err := fn(); err != nil {
		r.fail(fmt.Errorf("%s: %w", collection, err))
	}
}

// fetchAll pages through one collection for every media type.
func fetchAll[T any](ctx context.Context, fetch func(ctx context.Context, mt models.MediaType, page int) (account.Page[T], error)) ([]T, error) {
	var all []T
	for _, mt := range models.MediaTypes {
		items, err := account.FetchAll(ctx, func(ctx context.Context, page int) (account.Page[T], error) {
			return fetch(ctx, mt, page)
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mt, err)
		}
		all = append(all, items...)
	}
	return all, nil
}

func (o *Orchestrator) pull(ctx context.Context, s models.Session, r *StepResult) remoteSets {
	var rs remoteSets
	now := time.Now().UTC()

	pullItems := func(c profile.Collection, fetch func(ctx context.Context, s models.Session, mt models.MediaType, page int) (account.Page[models.CollectionItem], error)) map[models.MediaKey]struct{} {
		var seen map[models.MediaKey]struct{}
		isolate(r, string(c), func() error {
			remote, err := fetchAll(ctx, func(ctx context.Context, mt models.MediaType, page int) (account.Page[models.CollectionItem], error) {
				return fetch(ctx, s, mt, page)
			})
			if err != nil {
				return err
			}
			set := make(map[models.MediaKey]struct{}, len(remote))
			for i := range remote {
				if remote[i].AddedAt.IsZero() {
					remote[i].AddedAt = now
				}
				set[remote[i].Key()] = struct{}{}
			}
			seen = set

			local, err := o.deps.Profile.Items(ctx, c, s.UserID)
			if err != nil {
				return err
			}
			deleted := 0
			for _, it := range local {
				if _, ok := set[it.Key()]; ok {
					continue
				}
				if err := o.deps.Profile.DeleteItem(ctx, c, s.UserID, it.Key()); err != nil {
					return err
				}
				deleted++
			}
			if err := o.deps.Profile.UpsertItems(ctx, c, s.UserID, remote); err != nil {
				return err
			}
			r.count(string(c), len(remote))
			r.count(string(c)+"_deleted", deleted)
			return nil
		})
		return seen
	}
	rs.favorites = pullItems(profile.Favorites, o.deps.Account.Favorites)
	rs.watchlist = pullItems(profile.Watchlist, o.deps.Account.Watchlist)

	isolate(r, "ratings", func() error {
		remote, err := fetchAll(ctx, func(ctx context.Context, mt models.MediaType, page int) (account.Page[models.Rating], error) {
			return o.deps.Account.Ratings(ctx, s, mt, page)
		})
		if err != nil {
			return err
		}
		set := make(map[models.MediaKey]float64, len(remote))
		for i := range remote {
			if remote[i].AddedAt.IsZero() {
				remote[i].AddedAt = now
			}
			set[remote[i].Key()] = remote[i].Value
		}
		rs.ratings = set

		local, err := o.deps.Profile.Ratings(ctx, s.UserID)
		if err != nil {
			return err
		}
		deleted := 0
		for _, rt := range local {
			if _, ok := set[rt.Key()]; ok {
				continue
			}
			if err := o.deps.Profile.DeleteRating(ctx, s.UserID, rt.Key()); err != nil {
				return err
			}
			deleted++
		}
		if err := o.deps.Profile.UpsertRatings(ctx, s.UserID, remote); err != nil {
			return err
		}
		r.count("ratings", len(remote))
		r.count("ratings_deleted", deleted)
		return nil
	})
	return rs
}

// mergeGuest reads the guest snapshots straight from local storage and
// inserts them without overwriting existing rows.
func (o *Orchestrator) mergeGuest(ctx context.Context, s models.Session, r *StepResult) {
	for _, c := range []struct {
		coll profile.Collection
		key  string
	}{
		{profile.Favorites, localstore.KeyFavorites},
		{profile.Watchlist, localstore.KeyWatchlist},
	} {
		isolate(r, string(c.coll), func() error {
			items := localstore.ReadSnapshot[models.CollectionItem](o.deps.Local, c.key)
			n, err := o.deps.Profile.InsertItemsIgnore(ctx, c.coll, s.UserID, items)
			r.count(string(c.coll), n)
			return err
		})
	}

	isolate(r, "ratings", func() error {
		ratings := localstore.ReadSnapshot[models.Rating](o.deps.Local, localstore.KeyRatings)
		n, err := o.deps.Profile.InsertRatingsIgnore(ctx, s.UserID, ratings)
		r.count("ratings", n)
		return err
	})

	isolate(r, "tracker", func() error {
		snap := tracker.ReadGuest(o.deps.Local)
		n, err := o.deps.Profile.InsertTrackedShowsIgnore(ctx, s.UserID, snap.Shows)
		if err != nil {
			return err
		}
		r.count("tracked_shows", n)
		if err := o.deps.Profile.UpsertWatchedEpisodes(ctx, s.UserID, snap.Episodes); err != nil {
			return err
		}
		r.count("watched_episodes", len(snap.Episodes))
		return nil
	})
}

// push sends Profile Store items the Account Service did not report in
// step 2. When step 2 could not read a collection every item is pushed.
// Pushes run concurrently and independently; step 5 starts after all finish.
func (o *Orchestrator) push(ctx context.Context, s models.Session, rs remoteSets, r *StepResult) {
	p := pool.New().WithMaxGoroutines(o.deps.Concurrency).WithContext(ctx)
	counters := map[string]*atomic.Int64{
		"favorites": new(atomic.Int64),
		"watchlist": new(atomic.Int64),
		"ratings":   new(atomic.Int64),
	}

	submit := func(collection string, key models.MediaKey, fn func(ctx context.Context) (bool, error)) {
		p.Go(func(ctx context.Context) error {
			ok, err := fn(ctx)
			if err == nil && !ok {
				err = account.ErrRejected
			}
			op := collection + "_push"
			switch {
			case err == nil:
				metrics.RecordRemoteWrite(metrics.TargetAccount, op, nil)
				counters[collection].Add(1)
				return nil
			case errors.Is(err, account.ErrRejected):
				metrics.RecordRemoteRejected(metrics.TargetAccount, op)
			default:
				metrics.RecordRemoteWrite(metrics.TargetAccount, op, err)
			}
			return fmt.Errorf("%s %s: %w", collection, key, err)
		})
	}

	pushItems := func(c profile.Collection, known map[models.MediaKey]struct{}, set func(ctx context.Context, s models.Session, mt models.MediaType, id int64, on bool) (bool, error)) {
		isolate(r, string(c), func() error {
			items, err := o.deps.Profile.Items(ctx, c, s.UserID)
			if err != nil {
				return err
			}
			for _, it := range items {
				if _, ok := known[it.Key()]; ok {
					continue
				}
				submit(string(c), it.Key(), func(ctx context.Context) (bool, error) {
					return set(ctx, s, it.MediaType, it.MediaID, true)
				})
			}
			return nil
		})
	}
	pushItems(profile.Favorites, rs.favorites, o.deps.Account.SetFavorite)
	pushItems(profile.Watchlist, rs.watchlist, o.deps.Account.SetWatchlist)

	isolate(r, "ratings", func() error {
		ratings, err := o.deps.Profile.Ratings(ctx, s.UserID)
		if err != nil {
			return err
		}
		for _, rt := range ratings {
			if v, ok := rs.ratings[rt.Key()]; ok && v == rt.Value {
				continue
			}
			submit("ratings", rt.Key(), func(ctx context.Context) (bool, error) {
				return o.deps.Account.Rate(ctx, s, rt.MediaType, rt.MediaID, rt.Value)
			})
		}
		return nil
	})

	// Wait re-raises a panic from any push goroutine.
	isolate(r, "push", p.Wait)
	for _, c := range []string{"favorites", "watchlist", "ratings"} {
		r.count(c, int(counters[c].Load()))
	}
}
