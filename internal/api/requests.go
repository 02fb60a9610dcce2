// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// loginRequest completes the session handshake with either an approved
// request token or an existing session token.
type loginRequest struct {
	RequestToken string `json:"request_token" validate:"required_without=SessionToken"`
	SessionToken string `json:"session_token"`
}

type mediaItemRequest struct {
	MediaID    int64            `json:"media_id" validate:"gt=0"`
	MediaType  models.MediaType `json:"media_type" validate:"mediatype"`
	Title      string           `json:"title" validate:"required,max=500"`
	PosterPath *string          `json:"poster_path,omitempty" validate:"omitempty,imagepath"`
}

func (m mediaItemRequest) item() models.CollectionItem {
	return models.CollectionItem{MediaID: m.MediaID, MediaType: m.MediaType, Title: m.Title, PosterPath: m.PosterPath}
}

type rateRequest struct {
	Title      string  `json:"title" validate:"required,max=500"`
	PosterPath *string `json:"poster_path,omitempty" validate:"omitempty,imagepath"`
	Value      float64 `json:"value" validate:"gte=0.5,lte=10"`
}

type trackShowRequest struct {
	ShowID     int64   `json:"show_id" validate:"gt=0"`
	Name       string  `json:"name" validate:"required,max=500"`
	PosterPath *string `json:"poster_path,omitempty" validate:"omitempty,imagepath"`
}

type toggleEpisodeRequest struct {
	ShowID  int64            `json:"show_id" validate:"gt=0"`
	Season  int              `json:"season" validate:"gte=0"`
	Episode int              `json:"episode" validate:"gt=0"`
	Show    *models.ShowMeta `json:"show,omitempty"`
}

type seasonRequest struct {
	ShowID   int64            `json:"show_id" validate:"gt=0"`
	Season   int              `json:"season" validate:"gte=0"`
	Episodes []int            `json:"episodes" validate:"required,min=1,max=500,dive,gt=0"`
	Watched  bool             `json:"watched"`
	Show     *models.ShowMeta `json:"show,omitempty"`
}

type createListRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type listItemRequest struct {
	MediaID    int64            `json:"media_id" validate:"gt=0"`
	MediaType  models.MediaType `json:"media_type" validate:"mediatype"`
	Title      string           `json:"title" validate:"max=500"`
	PosterPath *string          `json:"poster_path,omitempty" validate:"omitempty,imagepath"`
}

func (l listItemRequest) item() models.ListItem {
	return models.ListItem{MediaID: l.MediaID, MediaType: l.MediaType, Title: l.Title, PosterPath: l.PosterPath}
}

type feedRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=100"`
}

// decodeJSON reads a bounded JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return validation.ValidateStruct(v)
}

// mediaKeyParam parses the {mediaType}/{mediaID} path segments.
func mediaKeyParam(r *http.Request) (models.MediaKey, error) {
	key := models.MediaKey{MediaType: models.MediaType(chi.URLParam(r, "mediaType"))}
	if key.MediaType != models.MediaMovie && key.MediaType != models.MediaTV {
		return models.MediaKey{}, fmt.Errorf("media type must be movie or tv")
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "mediaID"), 10, 64)
	if err != nil || id <= 0 {
		return models.MediaKey{}, fmt.Errorf("media id must be a positive integer")
	}
	key.MediaID = id
	return key, nil
}

// int64Param parses a positive integer path segment.
func int64Param(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return v, nil
}
