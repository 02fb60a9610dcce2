// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	ID     int64   `json:"id" validate:"gt=0"`
	Kind   string  `json:"kind" validate:"mediatype"`
	Name   string  `json:"name" validate:"required,max=10"`
	Poster *string `json:"poster,omitempty" validate:"omitempty,imagepath"`
	Score  float64 `json:"score" validate:"gte=0.5,lte=10"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	poster := "/x.jpg"
	badPoster := "x.jpg"

	tests := []struct {
		name      string
		input     sample
		wantField string
		wantMsg   string
	}{
		{
			name:  "valid",
			input: sample{ID: 550, Kind: "movie", Name: "Fight Club", Poster: &poster, Score: 8},
		},
		{
			name:      "zero id",
			input:     sample{ID: 0, Kind: "movie", Name: "x", Score: 1},
			wantField: "id",
			wantMsg:   "id must be greater than 0",
		},
		{
			name:      "bad media type",
			input:     sample{ID: 1, Kind: "book", Name: "x", Score: 1},
			wantField: "kind",
			wantMsg:   "kind must be movie or tv",
		},
		{
			name:      "unrooted poster",
			input:     sample{ID: 1, Kind: "tv", Name: "x", Poster: &badPoster, Score: 1},
			wantField: "poster",
			wantMsg:   "poster must start with /",
		},
		{
			name:      "name too long",
			input:     sample{ID: 1, Kind: "tv", Name: "abcdefghijk", Score: 1},
			wantField: "name",
			wantMsg:   "name must be at most 10 characters",
		},
		{
			name:      "score out of range",
			input:     sample{ID: 1, Kind: "tv", Name: "x", Score: 11},
			wantField: "score",
			wantMsg:   "score must be less than or equal to 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateStruct() error = %v, want *Error", err)
			}
			if verr.Fields[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Fields[0].Field, tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("message = %q, want to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}
