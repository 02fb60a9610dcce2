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
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/task"
	"github.com/tomtom215/marquee/internal/validation"
)

type flagFunc func(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64, on bool) (bool, error)

// MediaCollection synchronizes a flag-style collection: favorites or watchlist.
type MediaCollection struct {
	*base[keyed[models.CollectionItem]]
	key     string
	table   profile.Collection
	setFlag flagFunc
}

// NewFavorites creates the favorites synchronizer.
func NewFavorites(d Deps) *MediaCollection {
	return newMediaCollection(d, NameFavorites, localstore.KeyFavorites, profile.Favorites, d.Account.SetFavorite)
}

// NewWatchlist creates the watchlist synchronizer.
func NewWatchlist(d Deps) *MediaCollection {
	return newMediaCollection(d, NameWatchlist, localstore.KeyWatchlist, profile.Watchlist, d.Account.SetWatchlist)
}

func newMediaCollection(d Deps, name, key string, table profile.Collection, setFlag flagFunc) *MediaCollection {
	return &MediaCollection{
		base:    newBase(name, d, newKeyed[models.CollectionItem](nil)),
		key:     key,
		table:   table,
		setFlag: setFlag,
	}
}

// Load replaces the in-memory collection from its backing store.
func (c *MediaCollection) Load(ctx context.Context) {
	c.load(ctx,
		func(ctx context.Context, owner string) (keyed[models.CollectionItem], error) {
			items, err := c.deps.Profile.Items(ctx, c.table, owner)
			return newKeyed(items), err
		},
		func() keyed[models.CollectionItem] {
			return newKeyed(localstore.ReadSnapshot[models.CollectionItem](c.deps.Local, c.key))
		},
		newKeyed[models.CollectionItem](nil),
	)
}

func (c *MediaCollection) persist(v keyed[models.CollectionItem]) error {
	return localstore.WriteSnapshot(c.deps.Local, c.key, v.list)
}

// Add inserts item. Adding a present key refreshes its title and poster
// without moving it. The remote leg sets the Account Service flag and then
// upserts the Profile Store row; any failure rolls the local add back.
func (c *MediaCollection) Add(ctx context.Context, item models.CollectionItem) *task.Task {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	if err := validation.ValidateStruct(item); err != nil {
		return task.Completed(err)
	}
	key := item.Key()

	var (
		prev    models.CollectionItem
		existed bool
	)
	return c.applyOptimistic(ctx, optimistic[keyed[models.CollectionItem]]{
		operation: "add",
		mutate: func(cur keyed[models.CollectionItem]) keyed[models.CollectionItem] {
			prev, existed = cur.get(key)
			if existed {
				item.AddedAt = prev.AddedAt
			}
			return cur.with(item)
		},
		compensate: func(cur keyed[models.CollectionItem]) keyed[models.CollectionItem] {
			if existed {
				return cur.with(prev)
			}
			return cur.without(key)
		},
		persist: c.persist,
		remote: func(ctx context.Context, s models.Session) error {
			err := accountWrite(ctx, c.name+"_add", func(ctx context.Context) (bool, error) {
				return c.setFlag(ctx, s, item.MediaType, item.MediaID, true)
			})
			if err != nil {
				return err
			}
			return c.profileWrite(ctx, c.name+"_upsert", func(ctx context.Context) error {
				return c.deps.Profile.UpsertItems(ctx, c.table, s.UserID, []models.CollectionItem{item})
			})
		},
	})
}

// Remove deletes key. The local removal is kept even when the remote leg fails.
func (c *MediaCollection) Remove(ctx context.Context, key models.MediaKey) *task.Task {
	return c.applyOptimistic(ctx, optimistic[keyed[models.CollectionItem]]{
		operation: "remove",
		mutate: func(cur keyed[models.CollectionItem]) keyed[models.CollectionItem] {
			return cur.without(key)
		},
		persist: c.persist,
		remote: func(ctx context.Context, s models.Session) error {
			return both(
				func() error {
					return accountWrite(ctx, c.name+"_remove", func(ctx context.Context) (bool, error) {
						return c.setFlag(ctx, s, key.MediaType, key.MediaID, false)
					})
				},
				func() error {
					return c.profileWrite(ctx, c.name+"_delete", func(ctx context.Context) error {
						return c.deps.Profile.DeleteItem(ctx, c.table, s.UserID, key)
					})
				},
			)
		},
	})
}

// Contains reports whether key is in the collection.
func (c *MediaCollection) Contains(key models.MediaKey) bool {
	return c.state.Get().has(key)
}

// Items returns the collection in insertion order.
func (c *MediaCollection) Items() []models.CollectionItem {
	return c.state.Get().items()
}

// Len returns the number of items.
func (c *MediaCollection) Len() int {
	return len(c.state.Get().list)
}

// Subscribe registers cb for every change of the collection.
func (c *MediaCollection) Subscribe(cb func([]models.CollectionItem)) (unsubscribe func()) {
	return c.state.Subscribe(func(v keyed[models.CollectionItem]) { cb(v.items()) })
}
