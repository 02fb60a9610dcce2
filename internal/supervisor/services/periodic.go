// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/logging"
)

// PeriodicService calls fn every interval until canceled. Errors from fn are
// logged and the loop continues, except localstore.ErrClosed, which stops
// the service for good.
type PeriodicService struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
	log      zerolog.Logger
}

func newPeriodic(name string, interval time.Duration, fn func(ctx context.Context) error) *PeriodicService {
	return &PeriodicService{name: name, interval: interval, fn: fn, log: logging.WithComponent(name)}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	if p.interval <= 0 {
		return suture.ErrDoNotRestart
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			err := p.fn(ctx)
			switch {
			case errors.Is(err, localstore.ErrClosed):
				p.log.Info().Msg("Store closed, stopping")
				return suture.ErrDoNotRestart
			case err != nil:
				p.log.Warn().Err(err).Msg("Periodic run failed")
			default:
				p.log.Debug().Dur("duration", time.Since(start)).Msg("Periodic run finished")
			}
		}
	}
}

// String names the service in suture events.
func (p *PeriodicService) String() string {
	return p.name
}

// Refresher re-pulls authenticated collections. It must be a no-op in guest mode.
type Refresher interface {
	Refresh(ctx context.Context)
}

// NewRefreshService re-pulls every interval so changes made on other
// devices show up without a restart. interval <= 0 disables it.
func NewRefreshService(r Refresher, interval time.Duration) *PeriodicService {
	return newPeriodic("sync-refresh", interval, func(ctx context.Context) error {
		r.Refresh(ctx)
		return nil
	})
}

// GarbageCollector reclaims Local Store space.
type GarbageCollector interface {
	RunGC(discardRatio float64) error
}

// DefaultGCDiscardRatio is the Badger value-log discard ratio.
const DefaultGCDiscardRatio = 0.5

// NewGCService runs value-log GC every interval. interval <= 0 disables it.
func NewGCService(gc GarbageCollector, interval time.Duration) *PeriodicService {
	return newPeriodic("localstore-gc", interval, func(context.Context) error {
		return gc.RunGC(DefaultGCDiscardRatio)
	})
}
