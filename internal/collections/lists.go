// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package collections

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/task"
	"github.com/tomtom215/marquee/internal/validation"
)

var lastLocalID atomic.Int64

// nextLocalID returns "local-<unix millis>", strictly increasing within the process.
func nextLocalID() string {
	for {
		last := lastLocalID.Load()
		now := time.Now().UnixMilli()
		if now <= last {
			now = last + 1
		}
		if lastLocalID.CompareAndSwap(last, now) {
			return models.LocalListPrefix + strconv.FormatInt(now, 10)
		}
	}
}

// Lists synchronizes custom lists. Guest lists carry local IDs and are never
// reconciled with the Account Service.
type Lists struct {
	*base[[]models.UserList]

	// renamed maps provisional ids to the server ids they became.
	renamed sync.Map

	// creates holds the create task of every provisional id so later
	// mutations can wait for the server id.
	creates sync.Map
}

// NewLists creates the lists synchronizer.
func NewLists(d Deps) *Lists {
	return &Lists{base: newBase(NameLists, d, []models.UserList{})}
}

// Load replaces list metadata from the backing store. In authenticated mode
// items are fetched lazily by Items.
func (l *Lists) Load(ctx context.Context) {
	l.load(ctx,
		func(ctx context.Context, owner string) ([]models.UserList, error) {
			return l.deps.Profile.Lists(ctx, owner)
		},
		func() []models.UserList {
			return localstore.ReadSnapshot[models.UserList](l.deps.Local, localstore.KeyLists)
		},
		[]models.UserList{},
	)
}

func (l *Lists) persist(v []models.UserList) error {
	return localstore.WriteSnapshot(l.deps.Local, localstore.KeyLists, v)
}

func indexOfList(lists []models.UserList, id string) int {
	for i := range lists {
		if lists[i].ID == id {
			return i
		}
	}
	return -1
}

// replaceList returns a copy of lists with the entry id rewritten by fn.
func replaceList(lists []models.UserList, id string, fn func(models.UserList) models.UserList) []models.UserList {
	i := indexOfList(lists, id)
	if i < 0 {
		return lists
	}
	out := make([]models.UserList, len(lists))
	copy(out, lists)
	out[i] = fn(out[i])
	return out
}

func withoutList(lists []models.UserList, id string) []models.UserList {
	out := make([]models.UserList, 0, len(lists))
	for _, l := range lists {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

// remoteListID parses an Account Service list id. Local ids do not parse.
func remoteListID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil && n > 0
}

var errListNotSynced = errors.New("list has no account service id")

// remoteTarget returns the Account Service id and the store id for list id.
// A provisional id waits for its create to finish first; a list that never
// got a server id is an error, never a silently skipped write.
func (l *Lists) remoteTarget(ctx context.Context, id string) (int64, string, error) {
	if v, ok := l.creates.Load(id); ok {
		if err := v.(*task.Task).WaitContext(ctx); err != nil {
			return 0, "", fmt.Errorf("list %s was not created: %w", id, err)
		}
	}
	resolved := l.Resolve(id)
	remoteID, ok := remoteListID(resolved)
	if !ok {
		return 0, "", fmt.Errorf("list %s: %w", id, errListNotSynced)
	}
	return remoteID, resolved, nil
}

// Create adds an empty list and returns its id. While authenticated the
// returned id is provisional: once the Account Service answers, the list is
// renamed to the server id. A failed or rejected create removes the list.
func (l *Lists) Create(ctx context.Context, name, description string) (string, *task.Task) {
	list := models.UserList{
		ID:          nextLocalID(),
		Name:        name,
		Description: models.StringPtr(description),
	}
	if err := validation.ValidateStruct(list); err != nil {
		return "", task.Completed(err)
	}

	var serverID string
	t := l.applyOptimistic(ctx, optimistic[[]models.UserList]{
		operation: "create",
		mutate: func(cur []models.UserList) []models.UserList {
			out := make([]models.UserList, 0, len(cur)+1)
			out = append(out, cur...)
			return append(out, list)
		},
		compensate: func(cur []models.UserList) []models.UserList {
			return withoutList(withoutList(cur, list.ID), serverID)
		},
		persist: l.persist,
		remote: func(ctx context.Context, s models.Session) error {
			var created int64
			err := accountWrite(ctx, "lists_create", func(ctx context.Context) (bool, error) {
				id, err := l.deps.Account.CreateList(ctx, s, list.Name, description)
				created = id
				return id != 0, err
			})
			if err != nil {
				return err
			}
			serverID = strconv.FormatInt(created, 10)
			// Renaming inside Update keeps Resolve and the state consistent
			// for mutations that resolve their target under the same lock.
			l.state.Update(func(cur []models.UserList) []models.UserList {
				l.renamed.Store(list.ID, serverID)
				return replaceList(cur, list.ID, func(u models.UserList) models.UserList {
					u.ID = serverID
					return u
				})
			})
			stored := list
			stored.ID = serverID
			return l.profileWrite(ctx, "lists_upsert", func(ctx context.Context) error {
				return l.deps.Profile.UpsertList(ctx, s.UserID, stored)
			})
		},
	})
	if l.deps.Session.Current().Authenticated() {
		l.creates.Store(list.ID, t)
	}
	return list.ID, t
}

// Delete removes a list. The local removal is kept even when the remote leg fails.
func (l *Lists) Delete(ctx context.Context, id string) *task.Task {
	id = l.Resolve(id)
	if _, ok := l.Get(id); !ok {
		return task.Completed(fmt.Errorf("list %s: %w", id, ErrNotFound))
	}
	return l.applyOptimistic(ctx, optimistic[[]models.UserList]{
		operation: "delete",
		mutate: func(cur []models.UserList) []models.UserList {
			return withoutList(cur, l.Resolve(id))
		},
		persist: l.persist,
		remote: func(ctx context.Context, s models.Session) error {
			remoteID, listID, err := l.remoteTarget(ctx, id)
			if err != nil {
				return err
			}
			return both(
				func() error {
					return accountWrite(ctx, "lists_delete", func(ctx context.Context) (bool, error) {
						return l.deps.Account.DeleteList(ctx, s, remoteID)
					})
				},
				func() error {
					return l.profileWrite(ctx, "lists_delete", func(ctx context.Context) error {
						return l.deps.Profile.DeleteList(ctx, s.UserID, listID)
					})
				},
			)
		},
	})
}

// AddItem appends item to list id. A failed or rejected remote add removes it again.
func (l *Lists) AddItem(ctx context.Context, id string, item models.ListItem) *task.Task {
	id = l.Resolve(id)
	if err := validation.ValidateStruct(item); err != nil {
		return task.Completed(err)
	}
	if _, ok := l.Get(id); !ok {
		return task.Completed(fmt.Errorf("list %s: %w", id, ErrNotFound))
	}
	key := item.Key()

	var added bool
	return l.applyOptimistic(ctx, optimistic[[]models.UserList]{
		operation: "add_item",
		mutate: func(cur []models.UserList) []models.UserList {
			return replaceList(cur, l.Resolve(id), func(u models.UserList) models.UserList {
				for _, it := range u.Items {
					if it.Key() == key {
						return u
					}
				}
				added = true
				items := make([]models.ListItem, 0, len(u.Items)+1)
				u.Items = append(append(items, u.Items...), item)
				u.Count++
				return u
			})
		},
		compensate: func(cur []models.UserList) []models.UserList {
			if !added {
				return cur
			}
			return replaceList(cur, l.Resolve(id), func(u models.UserList) models.UserList {
				return listWithoutItem(u, key)
			})
		},
		persist: l.persist,
		remote: func(ctx context.Context, s models.Session) error {
			remoteID, listID, err := l.remoteTarget(ctx, id)
			if err != nil {
				return err
			}
			err = accountWrite(ctx, "lists_add_item", func(ctx context.Context) (bool, error) {
				return l.deps.Account.AddToList(ctx, s, remoteID, item.MediaID)
			})
			if err != nil {
				return err
			}
			return l.profileWrite(ctx, "lists_upsert_item", func(ctx context.Context) error {
				return l.deps.Profile.UpsertListItem(ctx, s.UserID, listID, item)
			})
		},
	})
}

func listWithoutItem(u models.UserList, key models.MediaKey) models.UserList {
	items := make([]models.ListItem, 0, len(u.Items))
	removed := false
	for _, it := range u.Items {
		if it.Key() == key {
			removed = true
			continue
		}
		items = append(items, it)
	}
	if removed && u.Count > 0 {
		u.Count--
	}
	u.Items = items
	return u
}

// RemoveItem drops key from list id. The local removal is kept even when the
// remote leg fails.
func (l *Lists) RemoveItem(ctx context.Context, id string, key models.MediaKey) *task.Task {
	id = l.Resolve(id)
	if _, ok := l.Get(id); !ok {
		return task.Completed(fmt.Errorf("list %s: %w", id, ErrNotFound))
	}
	return l.applyOptimistic(ctx, optimistic[[]models.UserList]{
		operation: "remove_item",
		mutate: func(cur []models.UserList) []models.UserList {
			return replaceList(cur, l.Resolve(id), func(u models.UserList) models.UserList {
				return listWithoutItem(u, key)
			})
		},
		persist: l.persist,
		remote: func(ctx context.Context, s models.Session) error {
			remoteID, listID, err := l.remoteTarget(ctx, id)
			if err != nil {
				return err
			}
			return both(
				func() error {
					return accountWrite(ctx, "lists_remove_item", func(ctx context.Context) (bool, error) {
						return l.deps.Account.RemoveFromList(ctx, s, remoteID, key.MediaID)
					})
				},
				func() error {
					return l.profileWrite(ctx, "lists_delete_item", func(ctx context.Context) error {
						return l.deps.Profile.DeleteListItem(ctx, s.UserID, listID, key)
					})
				},
			)
		},
	})
}

// Items returns the items of list id. In authenticated mode they are fetched
// from the Account Service and mirrored into the Profile Store; when that
// fails the Profile Store copy is used.
func (l *Lists) Items(ctx context.Context, id string) []models.ListItem {
	id = l.Resolve(id)
	list, ok := l.Get(id)
	if !ok {
		return []models.ListItem{}
	}
	s := l.deps.Session.Current()
	remoteID, isRemote := remoteListID(id)
	if !s.Authenticated() || !isRemote {
		return cloneItems(list.Items)
	}

	items, err := l.fetchItems(ctx, s, remoteID, list)
	if err != nil {
		l.log.Warn().Err(err).Str("list_id", id).Msg("List details unavailable, using profile store copy")
		items, err = l.deps.Profile.ListItems(ctx, s.UserID, id)
		if err != nil {
			l.log.Warn().Err(err).Str("list_id", id).Msg("List items unavailable")
			return cloneItems(list.Items)
		}
	}

	l.state.Update(func(cur []models.UserList) []models.UserList {
		return replaceList(cur, id, func(u models.UserList) models.UserList {
			u.Items = items
			u.Count = len(items)
			return u
		})
	})
	return cloneItems(items)
}

var errListMissing = errors.New("list missing on account service")

func (l *Lists) fetchItems(ctx context.Context, s models.Session, remoteID int64, list models.UserList) ([]models.ListItem, error) {
	details, err := l.deps.Account.ListDetails(ctx, s, remoteID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, errListMissing
	}
	items := details.Items
	if items == nil {
		items = []models.ListItem{}
	}

	list.Name = details.Name
	list.Description = details.Description
	list.Count = len(items)
	mirror := func(ctx context.Context) error {
		if err := l.deps.Profile.UpsertList(ctx, s.UserID, list); err != nil {
			return err
		}
		return l.deps.Profile.ReplaceListItems(ctx, s.UserID, list.ID, items)
	}
	if err := l.profileWrite(ctx, "lists_mirror", mirror); err != nil {
		l.log.Warn().Err(err).Str("list_id", list.ID).Msg("List mirror to profile store failed")
	}
	return items, nil
}

func cloneItems(items []models.ListItem) []models.ListItem {
	out := make([]models.ListItem, len(items))
	copy(out, items)
	return out
}

// Resolve maps an id returned by Create to the server id the list was
// renamed to. Any other id is returned unchanged.
func (l *Lists) Resolve(id string) string {
	if v, ok := l.renamed.Load(id); ok {
		return v.(string)
	}
	return id
}

// Get returns list metadata by id.
func (l *Lists) Get(id string) (models.UserList, bool) {
	id = l.Resolve(id)
	lists := l.state.Get()
	if i := indexOfList(lists, id); i >= 0 {
		return lists[i], true
	}
	return models.UserList{}, false
}

// All returns every list.
func (l *Lists) All() []models.UserList {
	lists := l.state.Get()
	out := make([]models.UserList, len(lists))
	copy(out, lists)
	return out
}

// Subscribe registers cb for every change of the lists.
func (l *Lists) Subscribe(cb func([]models.UserList)) (unsubscribe func()) {
	return l.state.Subscribe(cb)
}
