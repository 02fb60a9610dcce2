// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package localstore is the Local Store Adapter: on-device key-value storage for
guest-mode collections.

The Store contract mirrors a browser-style storage area: opaque string values
under fixed keys, a missing key reported as absent rather than as an error.
Two backends are provided:

  - BadgerStore: durable, backed by github.com/dgraph-io/badger/v4
  - MemoryStore: map-backed, for tests and ephemeral deployments

Values are JSON documents written and read through WriteSnapshot and
ReadSnapshot. Each collection is rewritten in full on every change. On read,
elements that fail validation are dropped and a document that does not parse
yields an empty collection; neither case is reported to the caller as an error.

The key names below are persisted on user devices and must never change.
*/
package localstore
