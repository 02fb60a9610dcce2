// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

func TestSupervisorTreeDefaults(t *testing.T) {
	t.Parallel()
	tree, err := NewSupervisorTree(logging.NewSlogLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults", tree.config)
	}
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	t.Parallel()
	tree, err := NewSupervisorTree(logging.NewSlogLogger(), TreeConfig{
		FailureBackoff:  50 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	storage := newMockService("storage", 0)
	syncSvc := newMockService("sync", 0)
	api := newMockService("api", 0)
	tree.AddStorageService(storage)
	tree.AddSyncService(syncSvc)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for api.starts.Load() == 0 || syncSvc.starts.Load() == 0 || storage.starts.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("services did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	for _, m := range []*mockService{storage, syncSvc, api} {
		if m.stops.Load() != m.starts.Load() {
			t.Errorf("%s: starts = %d, stops = %d", m.name, m.starts.Load(), m.stops.Load())
		}
	}
}

func TestSupervisorRestartsFailedService(t *testing.T) {
	t.Parallel()
	tree, err := NewSupervisorTree(logging.NewSlogLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	flaky := newMockService("flaky", 2)
	tree.AddSyncService(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for flaky.starts.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("starts = %d, want 3", flaky.starts.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-errCh
}

func TestSupervisorTreeRequiresLogger(t *testing.T) {
	t.Parallel()
	if _, err := NewSupervisorTree(nil, TreeConfig{}); err == nil {
		t.Fatal("expected error for nil logger")
	}
}

func TestAddRejectsUnknownLayer(t *testing.T) {
	t.Parallel()
	tree, err := NewSupervisorTree(logging.NewSlogLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if _, err := tree.Add(Layer("ui-layer"), newMockService("x", 0)); err == nil {
		t.Error("expected error for unknown layer")
	}
	if _, err := tree.Add(LayerSync, newMockService("refresh", 0)); err != nil {
		t.Errorf("Add(sync) = %v", err)
	}
}
