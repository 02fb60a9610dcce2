// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package account

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/tomtom215/marquee/internal/models"
)

// Fake is an in-memory Service for tests and offline runs. Zero value is not
// usable; call NewFake.
type Fake struct {
	mu sync.Mutex

	// PageSize controls pagination of collection reads.
	PageSize int
	// Fail, when set, is consulted before every call; a non-nil result is returned as the error.
	Fail func(op string) error
	// Reject, when set, makes writes for which it returns true answer false.
	Reject func(op string) bool

	profiles  map[string]models.Profile
	sessions  map[string]string
	favorites map[models.MediaKey]models.CollectionItem
	watchlist map[models.MediaKey]models.CollectionItem
	ratings   map[models.MediaKey]models.Rating
	lists     map[int64]*models.UserList
	nextList  int64
	calls     map[string]int
}

var _ Service = (*Fake)(nil)

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{
		PageSize:  20,
		profiles:  make(map[string]models.Profile),
		sessions:  make(map[string]string),
		favorites: make(map[models.MediaKey]models.CollectionItem),
		watchlist: make(map[models.MediaKey]models.CollectionItem),
		ratings:   make(map[models.MediaKey]models.Rating),
		lists:     make(map[int64]*models.UserList),
		nextList:  1000,
		calls:     make(map[string]int),
	}
}

// AddAccount registers a profile reachable through sessionToken.
func (f *Fake) AddAccount(p models.Profile, sessionToken string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = p
	f.sessions[sessionToken] = p.UserID
}

// SeedFavorite stores a favorite directly.
func (f *Fake) SeedFavorite(item models.CollectionItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favorites[item.Key()] = item
}

// SeedWatchlist stores a watchlist entry directly.
func (f *Fake) SeedWatchlist(item models.CollectionItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchlist[item.Key()] = item
}

// SeedRating stores a rating directly.
func (f *Fake) SeedRating(r models.Rating) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[r.Key()] = r
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// HasFavorite reports whether key is a favorite.
func (f *Fake) HasFavorite(key models.MediaKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.favorites[key]
	return ok
}

// HasWatchlist reports whether key is on the watchlist.
func (f *Fake) HasWatchlist(key models.MediaKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.watchlist[key]
	return ok
}

// RatingOf returns the stored rating for key.
func (f *Fake) RatingOf(key models.MediaKey) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.ratings[key]
	return r.Value, ok
}

// begin records a call and returns the injected failure, if any. Caller holds no lock.
func (f *Fake) begin(op string) error {
	f.mu.Lock()
	f.calls[op]++
	fail := f.Fail
	f.mu.Unlock()
	if fail != nil {
		return fail(op)
	}
	return nil
}

func (f *Fake) rejected(op string) bool {
	return f.Reject != nil && f.Reject(op)
}

// CreateRequestToken implements Service.
func (f *Fake) CreateRequestToken(context.Context) (string, error) {
	if err := f.begin("CreateRequestToken"); err != nil {
		return "", err
	}
	return "request-token", nil
}

// CreateSession implements Service. Request tokens of the form "approved:<session>" succeed.
func (f *Fake) CreateSession(_ context.Context, requestToken string) (string, error) {
	if err := f.begin("CreateSession"); err != nil {
		return "", err
	}
	const prefix = "approved:"
	if len(requestToken) <= len(prefix) || requestToken[:len(prefix)] != prefix {
		return "", ErrRejected
	}
	return requestToken[len(prefix):], nil
}

// DeleteSession implements Service.
func (f *Fake) DeleteSession(_ context.Context, sessionToken string) error {
	if err := f.begin("DeleteSession"); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.sessions, sessionToken)
	f.mu.Unlock()
	return nil
}

// Account implements Service.
func (f *Fake) Account(_ context.Context, sessionToken string) (models.Profile, error) {
	if err := f.begin("Account"); err != nil {
		return models.Profile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.sessions[sessionToken]
	if !ok {
		return models.Profile{}, ErrNoSession
	}
	return f.profiles[uid], nil
}

func (f *Fake) setFlag(op string, s models.Session, set map[models.MediaKey]models.CollectionItem, key models.MediaKey, on bool) (bool, error) {
	if s.Token == "" {
		return false, nil
	}
	if err := f.begin(op); err != nil {
		return false, err
	}
	if f.rejected(op) {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if on {
		if _, exists := set[key]; !exists {
			set[key] = models.CollectionItem{MediaID: key.MediaID, MediaType: key.MediaType, Title: key.String()}
		}
	} else {
		delete(set, key)
	}
	return true, nil
}

// SetFavorite implements Service.
func (f *Fake) SetFavorite(_ context.Context, s models.Session, mt models.MediaType, id int64, on bool) (bool, error) {
	return f.setFlag("SetFavorite", s, f.favorites, models.MediaKey{MediaID: id, MediaType: mt}, on)
}

// SetWatchlist implements Service.
func (f *Fake) SetWatchlist(_ context.Context, s models.Session, mt models.MediaType, id int64, on bool) (bool, error) {
	return f.setFlag("SetWatchlist", s, f.watchlist, models.MediaKey{MediaID: id, MediaType: mt}, on)
}

// Rate implements Service.
func (f *Fake) Rate(_ context.Context, s models.Session, mt models.MediaType, id int64, value float64) (bool, error) {
	if s.Token == "" {
		return false, nil
	}
	if err := f.begin("Rate"); err != nil {
		return false, err
	}
	if f.rejected("Rate") {
		return false, nil
	}
	key := models.MediaKey{MediaID: id, MediaType: mt}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[key] = models.Rating{
		CollectionItem: models.CollectionItem{MediaID: id, MediaType: mt, Title: key.String()},
		Value:          models.NormalizeRating(value),
	}
	return true, nil
}

// DeleteRating implements Service.
func (f *Fake) DeleteRating(_ context.Context, s models.Session, mt models.MediaType, id int64) (bool, error) {
	if s.Token == "" {
		return false, nil
	}
	if err := f.begin("DeleteRating"); err != nil {
		return false, err
	}
	if f.rejected("DeleteRating") {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ratings, models.MediaKey{MediaID: id, MediaType: mt})
	return true, nil
}

func pageOf[T any](all []T, page, size int) Page[T] {
	if size < 1 {
		size = 20
	}
	if page < 1 {
		page = 1
	}
	total := (len(all) + size - 1) / size
	if total == 0 {
		total = 1
	}
	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return Page[T]{Page: page, Results: append([]T(nil), all[start:end]...), TotalPages: total}
}

func sortedItems(set map[models.MediaKey]models.CollectionItem, mt models.MediaType) []models.CollectionItem {
	out := make([]models.CollectionItem, 0, len(set))
	for _, it := range set {
		if it.MediaType == mt {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MediaID < out[j].MediaID })
	return out
}

// Favorites implements Service.
func (f *Fake) Favorites(_ context.Context, s models.Session, mt models.MediaType, page int) (Page[models.CollectionItem], error) {
	if s.Token == "" {
		return Page[models.CollectionItem]{Page: page}, nil
	}
	if err := f.begin("Favorites"); err != nil {
		return Page[models.CollectionItem]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(sortedItems(f.favorites, mt), page, f.PageSize), nil
}

// Watchlist implements Service.
func (f *Fake) Watchlist(_ context.Context, s models.Session, mt models.MediaType, page int) (Page[models.CollectionItem], error) {
	if s.Token == "" {
		return Page[models.CollectionItem]{Page: page}, nil
	}
	if err := f.begin("Watchlist"); err != nil {
		return Page[models.CollectionItem]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageOf(sortedItems(f.watchlist, mt), page, f.PageSize), nil
}

// Ratings implements Service.
func (f *Fake) Ratings(_ context.Context, s models.Session, mt models.MediaType, page int) (Page[models.Rating], error) {
	if s.Token == "" {
		return Page[models.Rating]{Page: page}, nil
	}
	if err := f.begin("Ratings"); err != nil {
		return Page[models.Rating]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Rating, 0, len(f.ratings))
	for _, r := range f.ratings {
		if r.MediaType == mt {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MediaID < out[j].MediaID })
	return pageOf(out, page, f.PageSize), nil
}

// CreateList implements Service.
func (f *Fake) CreateList(_ context.Context, s models.Session, name, description string) (int64, error) {
	if s.Token == "" {
		return 0, nil
	}
	if err := f.begin("CreateList"); err != nil {
		return 0, err
	}
	if f.rejected("CreateList") {
		return 0, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextList++
	id := f.nextList
	f.lists[id] = &models.UserList{ID: strconv.FormatInt(id, 10), Name: name, Description: models.StringPtr(description)}
	return id, nil
}

func (f *Fake) editList(op string, s models.Session, listID, mediaID int64, add bool) (bool, error) {
	if s.Token == "" {
		return false, nil
	}
	if err := f.begin(op); err != nil {
		return false, err
	}
	if f.rejected(op) {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[listID]
	if !ok {
		return false, nil
	}
	kept := l.Items[:0]
	for _, it := range l.Items {
		if it.MediaID != mediaID {
			kept = append(kept, it)
		}
	}
	l.Items = kept
	if add {
		l.Items = append(l.Items, models.ListItem{MediaID: mediaID, MediaType: models.MediaMovie, Title: strconv.FormatInt(mediaID, 10)})
	}
	l.Count = len(l.Items)
	return true, nil
}

// AddToList implements Service.
func (f *Fake) AddToList(_ context.Context, s models.Session, listID, mediaID int64) (bool, error) {
	return f.editList("AddToList", s, listID, mediaID, true)
}

// RemoveFromList implements Service.
func (f *Fake) RemoveFromList(_ context.Context, s models.Session, listID, mediaID int64) (bool, error) {
	return f.editList("RemoveFromList", s, listID, mediaID, false)
}

// DeleteList implements Service.
func (f *Fake) DeleteList(_ context.Context, s models.Session, listID int64) (bool, error) {
	if s.Token == "" {
		return false, nil
	}
	if err := f.begin("DeleteList"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lists[listID]; !ok {
		return false, nil
	}
	delete(f.lists, listID)
	return true, nil
}

// ListDetails implements Service.
func (f *Fake) ListDetails(_ context.Context, s models.Session, listID int64) (*models.UserList, error) {
	if s.Token == "" {
		return nil, nil
	}
	if err := f.begin("ListDetails"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[listID]
	if !ok {
		return nil, nil
	}
	cp := *l
	cp.Items = append([]models.ListItem(nil), l.Items...)
	return &cp, nil
}
