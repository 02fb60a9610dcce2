// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package logging provides the zerolog-based logger shared by every Marquee package.
//
// The package owns a single global zerolog.Logger that is configured once at
// startup from the logging section of the configuration:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("user_id", uid).Msg("Session restored")
//	logging.Error().Err(err).Msg("Merge step failed")
//
// Synchronizers log through component loggers so every line carries the
// collection it came from:
//
//	log := logging.WithComponent("favorites")
//	log.Warn().Err(err).Str("key", key.String()).Msg("Remote add failed, rolled back")
//
// Context-aware logging propagates correlation IDs across one logical
// operation (a login merge, an HTTP request):
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Merge started")
//
// # Configuration
//
// Environment Variables (mapped by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
//
// # slog interop
//
// suture's event hook (sutureslog) requires a *slog.Logger. NewSlogLogger
// returns one that writes through the same zerolog backend.
package logging
