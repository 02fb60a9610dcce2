// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs Marquee's long-running services under a suture v4
tree.

Services are grouped into layers so that a failing loop in one layer does not
take down another:

	RootSupervisor ("marquee")
	├── storage-layer
	│   └── localstore-gc      (Badger value-log GC, when the badger backend is used)
	├── sync-layer
	│   └── sync-refresh       (periodic re-pull while authenticated)
	└── api-layer
	    └── http-server

Supervisor events are logged through sutureslog on top of the zerolog-backed
slog handler. A crashing service is restarted with backoff; a service that
returns suture.ErrDoNotRestart is left stopped.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)
*/
package supervisor
