// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marquee/internal/localstore"
)

type countingRefresher struct{ calls atomic.Int32 }

func (c *countingRefresher) Refresh(context.Context) { c.calls.Add(1) }

type scriptedGC struct {
	calls atomic.Int32
	errs  []error
}

func (g *scriptedGC) RunGC(ratio float64) error {
	n := int(g.calls.Add(1)) - 1
	if ratio != DefaultGCDiscardRatio {
		return errors.New("unexpected ratio")
	}
	if n < len(g.errs) {
		return g.errs[n]
	}
	return nil
}

func TestPeriodicDisabled(t *testing.T) {
	t.Parallel()
	svc := NewRefreshService(&countingRefresher{}, 0)
	if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("Serve = %v, want ErrDoNotRestart", err)
	}
}

func TestRefreshServiceTicks(t *testing.T) {
	t.Parallel()
	r := &countingRefresher{}
	svc := NewRefreshService(r, 5*time.Millisecond)
	if svc.String() != "sync-refresh" {
		t.Errorf("name = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for r.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("calls = %d, want 3", r.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v", err)
	}
}

func TestGCServiceSurvivesErrorsAndStopsOnClose(t *testing.T) {
	t.Parallel()
	gc := &scriptedGC{errs: []error{errors.New("disk busy"), nil, localstore.ErrClosed}}
	svc := NewGCService(gc, 5*time.Millisecond)

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(context.Background()) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Errorf("Serve = %v, want ErrDoNotRestart", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("GC service did not stop after the store closed")
	}
	if gc.calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", gc.calls.Load())
	}
}
