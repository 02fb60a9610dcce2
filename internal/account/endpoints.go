// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package account

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// CreateRequestToken starts the login handoff.
func (c *Client) CreateRequestToken(ctx context.Context) (string, error) {
	var resp struct {
		statusResponse
		RequestToken string `json:"request_token"`
	}
	if err := c.do(ctx, http.MethodGet, "/authentication/token/new", nil, nil, &resp); err != nil {
		return "", err
	}
	if !resp.ok() || resp.RequestToken == "" {
		return "", fmt.Errorf("create request token: %w", ErrRejected)
	}
	return resp.RequestToken, nil
}

// CreateSession exchanges an approved request token for a session token.
func (c *Client) CreateSession(ctx context.Context, requestToken string) (string, error) {
	var resp struct {
		statusResponse
		SessionID string `json:"session_id"`
	}
	body := map[string]string{"request_token": requestToken}
	if err := c.do(ctx, http.MethodPost, "/authentication/session/new", nil, body, &resp); err != nil {
		return "", err
	}
	if !resp.ok() || resp.SessionID == "" {
		return "", fmt.Errorf("create session: %w", ErrRejected)
	}
	return resp.SessionID, nil
}

// DeleteSession invalidates a session token.
func (c *Client) DeleteSession(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	var resp statusResponse
	body := map[string]string{"session_id": sessionToken}
	if err := c.do(ctx, http.MethodDelete, "/authentication/session", nil, body, &resp); err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("delete session: %w", ErrRejected)
	}
	return nil
}

// Account returns the profile behind a session token.
func (c *Client) Account(ctx context.Context, sessionToken string) (models.Profile, error) {
	if sessionToken == "" {
		return models.Profile{}, ErrNoSession
	}
	var resp struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Avatar   struct {
			TMDB struct {
				AvatarPath *string `json:"avatar_path"`
			} `json:"tmdb"`
		} `json:"avatar"`
	}
	q := url.Values{}
	q.Set("session_id", sessionToken)
	if err := c.do(ctx, http.MethodGet, "/account", q, nil, &resp); err != nil {
		return models.Profile{}, err
	}
	return models.Profile{
		UserID:     strconv.FormatInt(resp.ID, 10),
		Username:   resp.Username,
		Name:       resp.Name,
		AvatarPath: models.StringValue(resp.Avatar.TMDB.AvatarPath),
	}, nil
}

// SetFavorite marks or unmarks a title as favorite.
func (c *Client) SetFavorite(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64, favorite bool) (bool, error) {
	body := map[string]any{"media_type": string(mediaType), "media_id": mediaID, "favorite": favorite}
	return c.write(ctx, http.MethodPost, "/account/"+url.PathEscape(s.UserID)+"/favorite", s, body)
}

// SetWatchlist adds or removes a title from the watchlist.
func (c *Client) SetWatchlist(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64, watchlist bool) (bool, error) {
	body := map[string]any{"media_type": string(mediaType), "media_id": mediaID, "watchlist": watchlist}
	return c.write(ctx, http.MethodPost, "/account/"+url.PathEscape(s.UserID)+"/watchlist", s, body)
}

// Rate stores a rating. value is clamped to 0.5..10 in half steps.
func (c *Client) Rate(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64, value float64) (bool, error) {
	body := map[string]float64{"value": models.NormalizeRating(value)}
	return c.write(ctx, http.MethodPost, ratingPath(mediaType, mediaID), s, body)
}

// DeleteRating removes a rating.
func (c *Client) DeleteRating(ctx context.Context, s models.Session, mediaType models.MediaType, mediaID int64) (bool, error) {
	return c.write(ctx, http.MethodDelete, ratingPath(mediaType, mediaID), s, nil)
}

func ratingPath(mediaType models.MediaType, mediaID int64) string {
	return "/" + string(mediaType) + "/" + strconv.FormatInt(mediaID, 10) + "/rating"
}

// mediaResult is a TMDB movie or TV result row.
type mediaResult struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Name       string  `json:"name"`
	PosterPath *string `json:"poster_path"`
	Rating     float64 `json:"rating"`
	MediaType  string  `json:"media_type"`
}

func (r mediaResult) item(mediaType models.MediaType, addedAt time.Time) models.CollectionItem {
	title := r.Title
	if title == "" {
		title = r.Name
	}
	if r.MediaType != "" {
		if mt, err := models.ParseMediaType(r.MediaType); err == nil {
			mediaType = mt
		}
	}
	return models.CollectionItem{
		MediaID:    r.ID,
		MediaType:  mediaType,
		Title:      title,
		PosterPath: r.PosterPath,
		AddedAt:    addedAt,
	}
}

// collectionSegment maps a media type to the TMDB path segment for account collections.
func collectionSegment(mediaType models.MediaType) string {
	if mediaType == models.MediaTV {
		return "tv"
	}
	return "movies"
}

func (c *Client) page(ctx context.Context, s models.Session, kind string, mediaType models.MediaType, page int) (Page[mediaResult], error) {
	if s.Token == "" || s.UserID == "" {
		return Page[mediaResult]{Page: page}, nil
	}
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("session_id", s.Token)
	q.Set("page", strconv.Itoa(page))
	q.Set("sort_by", "created_at.asc")

	var resp Page[mediaResult]
	path := "/account/" + url.PathEscape(s.UserID) + "/" + kind + "/" + collectionSegment(mediaType)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
		return Page[mediaResult]{}, err
	}
	return resp, nil
}

func (c *Client) itemPage(ctx context.Context, s models.Session, kind string, mediaType models.MediaType, page int) (Page[models.CollectionItem], error) {
	raw, err := c.page(ctx, s, kind, mediaType, page)
	if err != nil {
		return Page[models.CollectionItem]{}, err
	}
	now := time.Now().UTC()
	out := Page[models.CollectionItem]{Page: raw.Page, TotalPages: raw.TotalPages, Results: make([]models.CollectionItem, 0, len(raw.Results))}
	for _, r := range raw.Results {
		out.Results = append(out.Results, r.item(mediaType, now))
	}
	return out, nil
}

// Favorites returns one page of favorites of the given media type.
func (c *Client) Favorites(ctx context.Context, s models.Session, mediaType models.MediaType, page int) (Page[models.CollectionItem], error) {
	return c.itemPage(ctx, s, "favorite", mediaType, page)
}

// Watchlist returns one page of the watchlist of the given media type.
func (c *Client) Watchlist(ctx context.Context, s models.Session, mediaType models.MediaType, page int) (Page[models.CollectionItem], error) {
	return c.itemPage(ctx, s, "watchlist", mediaType, page)
}

// Ratings returns one page of rated titles of the given media type.
func (c *Client) Ratings(ctx context.Context, s models.Session, mediaType models.MediaType, page int) (Page[models.Rating], error) {
	raw, err := c.page(ctx, s, "rated", mediaType, page)
	if err != nil {
		return Page[models.Rating]{}, err
	}
	now := time.Now().UTC()
	out := Page[models.Rating]{Page: raw.Page, TotalPages: raw.TotalPages, Results: make([]models.Rating, 0, len(raw.Results))}
	for _, r := range raw.Results {
		out.Results = append(out.Results, models.Rating{CollectionItem: r.item(mediaType, now), Value: r.Rating})
	}
	return out, nil
}

// CreateList creates a list and returns its id, or 0 when nothing was created.
func (c *Client) CreateList(ctx context.Context, s models.Session, name, description string) (int64, error) {
	if s.Token == "" {
		return 0, nil
	}
	q := url.Values{}
	q.Set("session_id", s.Token)
	var resp struct {
		statusResponse
		ListID int64 `json:"list_id"`
	}
	body := map[string]string{"name": name, "description": description, "language": "en"}
	err := c.do(ctx, http.MethodPost, "/list", q, body, &resp)
	if _, rejected := asRejection(err); rejected {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !resp.ok() {
		return 0, nil
	}
	return resp.ListID, nil
}

// AddToList appends a movie to a list.
func (c *Client) AddToList(ctx context.Context, s models.Session, listID, mediaID int64) (bool, error) {
	return c.write(ctx, http.MethodPost, listPath(listID)+"/add_item", s, map[string]int64{"media_id": mediaID})
}

// RemoveFromList removes a movie from a list.
func (c *Client) RemoveFromList(ctx context.Context, s models.Session, listID, mediaID int64) (bool, error) {
	return c.write(ctx, http.MethodPost, listPath(listID)+"/remove_item", s, map[string]int64{"media_id": mediaID})
}

// DeleteList deletes a list.
func (c *Client) DeleteList(ctx context.Context, s models.Session, listID int64) (bool, error) {
	return c.write(ctx, http.MethodDelete, listPath(listID), s, nil)
}

// ListDetails returns a list with its items, or nil when it does not exist.
func (c *Client) ListDetails(ctx context.Context, s models.Session, listID int64) (*models.UserList, error) {
	if s.Token == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("session_id", s.Token)
	var resp struct {
		Name        string        `json:"name"`
		Description string        `json:"description"`
		ItemCount   int           `json:"item_count"`
		Items       []mediaResult `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, listPath(listID), q, nil, &resp)
	if _, rejected := asRejection(err); rejected {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	list := &models.UserList{
		ID:          strconv.FormatInt(listID, 10),
		Name:        resp.Name,
		Description: models.StringPtr(resp.Description),
		Count:       resp.ItemCount,
		Items:       make([]models.ListItem, 0, len(resp.Items)),
	}
	for _, r := range resp.Items {
		it := r.item(models.MediaMovie, time.Time{})
		list.Items = append(list.Items, models.ListItem{
			MediaID:    it.MediaID,
			MediaType:  it.MediaType,
			Title:      it.Title,
			PosterPath: it.PosterPath,
		})
	}
	if list.Count < len(list.Items) {
		list.Count = len(list.Items)
	}
	return list, nil
}

func listPath(listID int64) string {
	return "/list/" + strconv.FormatInt(listID, 10)
}
