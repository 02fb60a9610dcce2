// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRemoteWrite(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		operation string
		err       error
		result    string
	}{
		{name: "account success", target: TargetAccount, operation: "test_favorite", result: ResultSuccess},
		{name: "profile failure", target: TargetProfile, operation: "test_upsert", err: errors.New("connection refused"), result: ResultFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SyncRemoteWrites.WithLabelValues(tt.target, tt.operation, tt.result))
			RecordRemoteWrite(tt.target, tt.operation, tt.err)
			after := testutil.ToFloat64(SyncRemoteWrites.WithLabelValues(tt.target, tt.operation, tt.result))
			if after-before != 1 {
				t.Errorf("counter delta = %v, want 1", after-before)
			}
		})
	}
}

func TestRecordMergeStep(t *testing.T) {
	before := testutil.ToFloat64(MergeStepResults.WithLabelValues("test_step", ResultFailure))
	RecordMergeStep("test_step", 10*time.Millisecond, errors.New("boom"))
	RecordMergeStep("test_step", 5*time.Millisecond, nil)

	if got := testutil.ToFloat64(MergeStepResults.WithLabelValues("test_step", ResultFailure)) - before; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(MergeStepResults.WithLabelValues("test_step", ResultSuccess)); got < 1 {
		t.Errorf("success count = %v, want >= 1", got)
	}
}

func TestRecordMergeItemsIgnoresZero(t *testing.T) {
	RecordMergeItems("test_items", "favorites", 0)
	RecordMergeItems("test_items", "favorites", -3)
	RecordMergeItems("test_items", "watchlist", 4)

	if got := testutil.ToFloat64(MergeItems.WithLabelValues("test_items", "watchlist")); got != 4 {
		t.Errorf("watchlist items = %v, want 4", got)
	}
}

func TestSetPendingDepth(t *testing.T) {
	SetPendingDepth("test-queue", 3)
	if got := testutil.ToFloat64(PendingQueueDepth.WithLabelValues("test-queue")); got != 3 {
		t.Errorf("depth = %v, want 3", got)
	}
	SetPendingDepth("test-queue", 0)
	if got := testutil.ToFloat64(PendingQueueDepth.WithLabelValues("test-queue")); got != 0 {
		t.Errorf("depth = %v, want 0", got)
	}
}

func TestRecordLocalDecode(t *testing.T) {
	RecordLocalDecode("test-key", true, 2)
	RecordLocalDecode("test-key", false, 1)

	if got := testutil.ToFloat64(LocalStoreCorruptDocuments.WithLabelValues("test-key")); got != 1 {
		t.Errorf("corrupt documents = %v, want 1", got)
	}
	if got := testutil.ToFloat64(LocalStoreDroppedRecords.WithLabelValues("test-key")); got != 3 {
		t.Errorf("dropped records = %v, want 3", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}
