// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package localstore

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/validation"
)

// ReadSnapshot decodes the JSON array stored under key. Absent keys, storage
// errors and corrupt documents all yield an empty, non-nil slice; elements
// that fail decoding or validation are dropped.
func ReadSnapshot[T any](s Store, key string) []T {
	out := []T{}
	raw, ok, err := s.GetItem(key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Local store read failed, using empty collection")
		return out
	}
	if !ok || raw == "" {
		return out
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		metrics.RecordLocalDecode(key, true, 0)
		logging.Warn().Err(err).Str("key", key).Msg("Corrupt local document, using empty collection")
		return out
	}

	dropped := 0
	for i, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			dropped++
			logging.Debug().Err(err).Str("key", key).Int("index", i).Msg("Dropping undecodable local record")
			continue
		}
		if err := validation.ValidateStruct(v); err != nil {
			dropped++
			logging.Debug().Err(err).Str("key", key).Int("index", i).Msg("Dropping invalid local record")
			continue
		}
		out = append(out, v)
	}
	if dropped > 0 {
		metrics.RecordLocalDecode(key, false, dropped)
		logging.Warn().Str("key", key).Int("dropped", dropped).Int("kept", len(out)).Msg("Dropped malformed local records")
	}
	return out
}

// WriteSnapshot overwrites key with the full collection.
func WriteSnapshot[T any](s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetItem(key, string(data))
}

// ReadStrings decodes a JSON array of strings stored under key, with the
// same fallback rules as ReadSnapshot.
func ReadStrings(s Store, key string) []string {
	out := []string{}
	raw, ok, err := s.GetItem(key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Local store read failed, using empty collection")
		return out
	}
	if !ok || raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		metrics.RecordLocalDecode(key, true, 0)
		logging.Warn().Err(err).Str("key", key).Msg("Corrupt local document, using empty collection")
		return []string{}
	}
	return out
}

// ReadValue decodes a single JSON object stored under key. ok is false when
// the key is absent or the document is unusable.
func ReadValue[T any](s Store, key string) (v T, ok bool) {
	raw, found, err := s.GetItem(key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Local store read failed")
		return v, false
	}
	if !found || raw == "" {
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		metrics.RecordLocalDecode(key, true, 0)
		logging.Warn().Err(err).Str("key", key).Msg("Corrupt local document ignored")
		var zero T
		return zero, false
	}
	return v, true
}

// WriteValue stores v as a JSON object under key.
func WriteValue[T any](s Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetItem(key, string(data))
}
