// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/task"
	"github.com/tomtom215/marquee/internal/validation"
)

// Ratings synchronizes the user's scores.
type Ratings struct {
	*base[keyed[models.Rating]]
}

// NewRatings creates the ratings synchronizer.
func NewRatings(d Deps) *Ratings {
	return &Ratings{base: newBase(NameRatings, d, newKeyed[models.Rating](nil))}
}

// Load replaces the in-memory ratings from their backing store.
func (r *Ratings) Load(ctx context.Context) {
	r.load(ctx,
		func(ctx context.Context, owner string) (keyed[models.Rating], error) {
			ratings, err := r.deps.Profile.Ratings(ctx, owner)
			return newKeyed(ratings), err
		},
		func() keyed[models.Rating] {
			return newKeyed(localstore.ReadSnapshot[models.Rating](r.deps.Local, localstore.KeyRatings))
		},
		newKeyed[models.Rating](nil),
	)
}

func (r *Ratings) persist(v keyed[models.Rating]) error {
	return localstore.WriteSnapshot(r.deps.Local, localstore.KeyRatings, v.list)
}

// Rate stores value for item, normalized to the half-point scale the
// Account Service accepts. A failed remote leg does not undo the local score.
func (r *Ratings) Rate(ctx context.Context, item models.CollectionItem, value float64) *task.Task {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	rating := models.Rating{CollectionItem: item, Value: models.NormalizeRating(value)}
	if err := validation.ValidateStruct(rating); err != nil {
		return task.Completed(err)
	}
	key := rating.Key()

	return r.applyOptimistic(ctx, optimistic[keyed[models.Rating]]{
		operation: "rate",
		mutate: func(cur keyed[models.Rating]) keyed[models.Rating] {
			if prev, ok := cur.get(key); ok {
				rating.AddedAt = prev.AddedAt
			}
			return cur.with(rating)
		},
		persist: r.persist,
		remote: func(ctx context.Context, s models.Session) error {
			err := accountWrite(ctx, "ratings_rate", func(ctx context.Context) (bool, error) {
				return r.deps.Account.Rate(ctx, s, rating.MediaType, rating.MediaID, rating.Value)
			})
			if err != nil {
				return err
			}
			return r.profileWrite(ctx, "ratings_upsert", func(ctx context.Context) error {
				return r.deps.Profile.UpsertRatings(ctx, s.UserID, []models.Rating{rating})
			})
		},
	})
}

// Remove deletes the rating for key. The local removal is kept even when
// the remote leg fails.
func (r *Ratings) Remove(ctx context.Context, key models.MediaKey) *task.Task {
	return r.applyOptimistic(ctx, optimistic[keyed[models.Rating]]{
		operation: "remove",
		mutate: func(cur keyed[models.Rating]) keyed[models.Rating] {
			return cur.without(key)
		},
		persist: r.persist,
		remote: func(ctx context.Context, s models.Session) error {
			return both(
				func() error {
					return accountWrite(ctx, "ratings_delete", func(ctx context.Context) (bool, error) {
						return r.deps.Account.DeleteRating(ctx, s, key.MediaType, key.MediaID)
					})
				},
				func() error {
					return r.profileWrite(ctx, "ratings_delete", func(ctx context.Context) error {
						return r.deps.Profile.DeleteRating(ctx, s.UserID, key)
					})
				},
			)
		},
	})
}

// Value returns the score for key.
func (r *Ratings) Value(key models.MediaKey) (float64, bool) {
	rating, ok := r.state.Get().get(key)
	return rating.Value, ok
}

// Items returns every rating in insertion order.
func (r *Ratings) Items() []models.Rating {
	return r.state.Get().items()
}

// Subscribe registers cb for every change of the ratings.
func (r *Ratings) Subscribe(cb func([]models.Rating)) (unsubscribe func()) {
	return r.state.Subscribe(func(v keyed[models.Rating]) { cb(v.items()) })
}
