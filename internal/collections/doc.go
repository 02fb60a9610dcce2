// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package collections implements the per-collection synchronizers: favorites,
watchlist, ratings, custom lists, viewing history and RSS subscriptions.

Each synchronizer owns an observable in-memory value and decides, from the
current session, which store backs it:

  - guest: the Local Store, rewritten in full after every change
  - authenticated: the Profile Store, with writes mirrored to the Account
    Service where the collection exists there

Mutations are optimistic. The local value changes before the method returns
and the remote leg runs as a task.Task. Add paths roll back when the remote
leg fails or is rejected; remove and rate paths do not. History is local in
both modes.

Loads never fail from the caller's point of view: a remote read error leaves
the collection empty and a corrupt local document reads as empty.
*/
package collections
