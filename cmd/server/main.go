// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/engine"
	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("storage_backend", cfg.Storage.Backend).
		Str("profile_driver", cfg.Profile.Driver).
		Str("account_url", cfg.Account.BaseURL).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Marquee")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, gc, err := openLocalStore(cfg.Storage)
	if err != nil {
		return err
	}
	if gc != nil {
		defer func() {
			if err := gc.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing local store")
			}
		}()
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, err := profile.Open(initCtx, cfg.Profile)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing profile store")
		}
	}()

	eng := engine.New(engine.Deps{
		Local:   local,
		Profile: store,
		Account: account.NewClient(cfg.Account),
		Sync:    cfg.Sync,
	})
	sess := eng.Init(initCtx)
	logging.Info().Bool("authenticated", sess.Authenticated()).Msg("Sync engine initialized")

	router := api.NewRouter(api.NewHandler(eng, store), cfg.Server)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + 5*time.Second
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		return err
	}

	if gc != nil {
		tree.AddStorageService(services.NewGCService(gc, cfg.Storage.GCInterval))
	}
	tree.AddSyncService(services.NewRefreshService(eng, cfg.Sync.RefreshInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	return nil
}

// openLocalStore returns the store and, for the Badger backend, the same
// store as a closable GC target.
func openLocalStore(cfg config.StorageConfig) (localstore.Store, *localstore.BadgerStore, error) {
	if cfg.Backend == "memory" {
		logging.Warn().Msg("Local store is in memory; guest data will not survive a restart")
		return localstore.NewMemoryStore(), nil, nil
	}
	bs, err := localstore.OpenBadger(localstore.BadgerConfig{
		Path:       cfg.Path,
		SyncWrites: cfg.SyncWrites,
	})
	if err != nil {
		return nil, nil, err
	}
	return bs, bs, nil
}
