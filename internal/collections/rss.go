// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/task"
	"github.com/tomtom215/marquee/internal/validation"
)

// RSS synchronizes feed subscriptions. Authenticated state lives only in the
// Profile Store; the Account Service has no feeds.
type RSS struct {
	*base[[]models.RSSFeed]
}

// NewRSS creates the feed synchronizer.
func NewRSS(d Deps) *RSS {
	return &RSS{base: newBase(NameRSS, d, []models.RSSFeed{})}
}

// Load replaces the feeds from their backing store.
func (r *RSS) Load(ctx context.Context) {
	r.load(ctx,
		func(ctx context.Context, owner string) ([]models.RSSFeed, error) {
			return r.deps.Profile.Feeds(ctx, owner)
		},
		func() []models.RSSFeed {
			return localstore.ReadSnapshot[models.RSSFeed](r.deps.Local, localstore.KeyRSSFeeds)
		},
		[]models.RSSFeed{},
	)
}

func (r *RSS) persist(v []models.RSSFeed) error {
	return localstore.WriteSnapshot(r.deps.Local, localstore.KeyRSSFeeds, v)
}

func indexOfFeedURL(feeds []models.RSSFeed, url string) int {
	for i := range feeds {
		if feeds[i].URL == url {
			return i
		}
	}
	return -1
}

// Add subscribes to url. Subscribing to a URL that is already present
// updates that feed in place and keeps its id. A failed remote write
// restores the previous state.
func (r *RSS) Add(ctx context.Context, name, url, description, category string) (models.RSSFeed, *task.Task) {
	feed := models.RSSFeed{
		ID:          uuid.NewString(),
		Name:        name,
		URL:         url,
		Description: description,
		Category:    category,
		AddedAt:     time.Now().UTC(),
	}
	if err := validation.ValidateStruct(feed); err != nil {
		return models.RSSFeed{}, task.Completed(err)
	}

	var (
		prev    models.RSSFeed
		existed bool
	)
	t := r.applyOptimistic(ctx, optimistic[[]models.RSSFeed]{
		operation: "add",
		mutate: func(cur []models.RSSFeed) []models.RSSFeed {
			out := make([]models.RSSFeed, len(cur), len(cur)+1)
			copy(out, cur)
			if i := indexOfFeedURL(cur, url); i >= 0 {
				prev, existed = cur[i], true
				feed.ID, feed.AddedAt = prev.ID, prev.AddedAt
				out[i] = feed
				return out
			}
			return append(out, feed)
		},
		compensate: func(cur []models.RSSFeed) []models.RSSFeed {
			i := indexOfFeedURL(cur, url)
			if i < 0 {
				return cur
			}
			out := make([]models.RSSFeed, 0, len(cur))
			out = append(out, cur[:i]...)
			if existed {
				out = append(out, prev)
			}
			return append(out, cur[i+1:]...)
		},
		persist: r.persist,
		remote: func(ctx context.Context, s models.Session) error {
			return r.profileWrite(ctx, "rss_upsert", func(ctx context.Context) error {
				return r.deps.Profile.UpsertFeed(ctx, s.UserID, feed)
			})
		},
	})
	return feed, t
}

// Remove unsubscribes from feed id. The local removal is kept even when the
// remote leg fails.
func (r *RSS) Remove(ctx context.Context, id string) *task.Task {
	found := false
	for _, f := range r.state.Get() {
		if f.ID == id {
			found = true
			break
		}
	}
	if !found {
		return task.Completed(fmt.Errorf("feed %s: %w", id, ErrNotFound))
	}
	return r.applyOptimistic(ctx, optimistic[[]models.RSSFeed]{
		operation: "remove",
		mutate: func(cur []models.RSSFeed) []models.RSSFeed {
			out := make([]models.RSSFeed, 0, len(cur))
			for _, f := range cur {
				if f.ID != id {
					out = append(out, f)
				}
			}
			return out
		},
		persist: r.persist,
		remote: func(ctx context.Context, s models.Session) error {
			return r.profileWrite(ctx, "rss_delete", func(ctx context.Context) error {
				return r.deps.Profile.DeleteFeed(ctx, s.UserID, id)
			})
		},
	})
}

// Feeds returns every subscription in insertion order.
func (r *RSS) Feeds() []models.RSSFeed {
	cur := r.state.Get()
	out := make([]models.RSSFeed, len(cur))
	copy(out, cur)
	return out
}

// Subscribe registers cb for every change of the feeds.
func (r *RSS) Subscribe(cb func([]models.RSSFeed)) (unsubscribe func()) {
	return r.state.Subscribe(cb)
}
