// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastPolicy(maxRetries int) Policy {
	return Policy{MaxRetries: maxRetries, BaseDelay: time.Millisecond}
}

func TestDoExhaustion(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(2).Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("failure %d", calls)
	})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if err == nil || err.Error() != "failure 3" {
		t.Errorf("err = %v, want last failure", err)
	}
}

func TestDoReturnsLastErrorUnchanged(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("still down")
	err := fastPolicy(1).Do(context.Background(), func(context.Context) error { return sentinel })
	if err != sentinel { //nolint:errorlint // identity is the contract
		t.Errorf("err = %v, want the sentinel itself", err)
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		maxRetries int
		failures   int
		wantCalls  int
		wantErr    bool
	}{
		{name: "first try", maxRetries: 2, failures: 0, wantCalls: 1},
		{name: "second try", maxRetries: 2, failures: 1, wantCalls: 2},
		{name: "last try", maxRetries: 2, failures: 2, wantCalls: 3},
		{name: "no retries", maxRetries: 0, failures: 1, wantCalls: 1, wantErr: true},
		{name: "negative retries", maxRetries: -4, failures: 5, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls := 0
			err := fastPolicy(tt.maxRetries).Do(context.Background(), func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return errors.New("transient")
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoLinearBackoff(t *testing.T) {
	t.Parallel()

	base := 20 * time.Millisecond
	var stamps []time.Time
	_ = Policy{MaxRetries: 2, BaseDelay: base}.Do(context.Background(), func(context.Context) error {
		stamps = append(stamps, time.Now())
		return errors.New("down")
	})

	if len(stamps) != 3 {
		t.Fatalf("calls = %d, want 3", len(stamps))
	}
	if gap := stamps[1].Sub(stamps[0]); gap < base {
		t.Errorf("first wait = %v, want >= %v", gap, base)
	}
	if gap := stamps[2].Sub(stamps[1]); gap < 2*base {
		t.Errorf("second wait = %v, want >= %v", gap, 2*base)
	}
}

func TestDoContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{MaxRetries: 5, BaseDelay: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDoValue(t *testing.T) {
	t.Parallel()

	calls := 0
	v, err := DoValue(context.Background(), fastPolicy(2), func(context.Context) (bool, error) {
		calls++
		if calls == 1 {
			return false, errors.New("flaky")
		}
		return true, nil
	})
	if err != nil || !v {
		t.Errorf("DoValue() = %v, %v; want true, nil", v, err)
	}
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	if p.MaxRetries != 2 || p.BaseDelay != time.Second {
		t.Errorf("DefaultPolicy() = %+v", p)
	}
}
