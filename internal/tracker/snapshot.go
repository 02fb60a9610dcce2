// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tracker

import (
	"sort"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// snapshot is the tracker state. Maps are never modified after the snapshot
// is published; mutations clone first.
type snapshot struct {
	shows   map[int64]models.TrackedShow
	watched map[string]models.EpisodeKey
}

func emptySnapshot() snapshot {
	return snapshot{
		shows:   make(map[int64]models.TrackedShow),
		watched: make(map[string]models.EpisodeKey),
	}
}

func fromModel(m models.TrackerSnapshot) snapshot {
	s := emptySnapshot()
	for _, sh := range m.Shows {
		s.shows[sh.ShowID] = sh
	}
	for _, ep := range m.Episodes {
		s.watched[ep.String()] = ep
	}
	return s
}

func (s snapshot) clone() snapshot {
	out := snapshot{
		shows:   make(map[int64]models.TrackedShow, len(s.shows)),
		watched: make(map[string]models.EpisodeKey, len(s.watched)),
	}
	for k, v := range s.shows {
		out.shows[k] = v
	}
	for k, v := range s.watched {
		out.watched[k] = v
	}
	return out
}

// showList returns shows most recently updated first.
func (s snapshot) showList() []models.TrackedShow {
	out := make([]models.TrackedShow, 0, len(s.shows))
	for _, sh := range s.shows {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].LastUpdated.After(out[j].LastUpdated)
		}
		return out[i].ShowID < out[j].ShowID
	})
	return out
}

func sortEpisodes(eps []models.EpisodeKey) {
	sort.Slice(eps, func(i, j int) bool {
		a, b := eps[i], eps[j]
		if a.ShowID != b.ShowID {
			return a.ShowID < b.ShowID
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Episode < b.Episode
	})
}

func (s snapshot) episodeList() []models.EpisodeKey {
	out := make([]models.EpisodeKey, 0, len(s.watched))
	for _, ep := range s.watched {
		out = append(out, ep)
	}
	sortEpisodes(out)
	return out
}

func (s snapshot) model() models.TrackerSnapshot {
	return models.TrackerSnapshot{Shows: s.showList(), Episodes: s.episodeList()}
}

// ReadGuest decodes the guest tracker snapshot from local storage. Show
// records and episode keys that fail validation are dropped.
func ReadGuest(local localstore.Store) models.TrackerSnapshot {
	shows := localstore.ReadSnapshot[models.TrackedShow](local, localstore.KeyTrackedShows)
	keys := localstore.ReadStrings(local, localstore.KeyTrackedEpisodes)

	eps := make([]models.EpisodeKey, 0, len(keys))
	for _, k := range keys {
		ep, err := models.ParseEpisodeKey(k)
		if err == nil {
			err = validation.ValidateStruct(ep)
		}
		if err != nil {
			logging.Warn().Err(err).Str("key", localstore.KeyTrackedEpisodes).Msg("Dropping invalid episode key")
			continue
		}
		eps = append(eps, ep)
	}
	return models.TrackerSnapshot{Shows: shows, Episodes: eps}
}

func writeGuest(local localstore.Store, s snapshot) error {
	if err := localstore.WriteSnapshot(local, localstore.KeyTrackedShows, s.showList()); err != nil {
		return err
	}
	eps := s.episodeList()
	keys := make([]string, len(eps))
	for i, ep := range eps {
		keys[i] = ep.String()
	}
	return localstore.WriteSnapshot(local, localstore.KeyTrackedEpisodes, keys)
}
