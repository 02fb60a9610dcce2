// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package models defines the records exchanged between the Marquee stores.

Every per-user collection has an explicit, closed record type. The same
records are serialized to local device storage (guest mode), written to the
Profile Store, and translated to and from Account Service payloads.

Identity rules:

  - CollectionItem, Rating, HistoryEntry: (MediaID, MediaType) per owner, see MediaKey
  - TrackedShow: ShowID per owner
  - EpisodeKey: (ShowID, Season, Episode), rendered as "showId:season:episode"
  - UserList: ID assigned by whichever store created it
  - RSSFeed: URL per owner

Records carry validate tags; internal/localstore drops any element that
fails validation instead of handing partially-formed data to a synchronizer.
*/
package models
