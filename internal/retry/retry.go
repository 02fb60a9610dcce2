// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package retry is the bounded retry wrapper applied to individual remote writes.
//
// Retries are uniform: the wrapper never inspects the error, waits
// BaseDelay*(n+1) before retry n (linear, no jitter), and after MaxRetries
// additional attempts returns the last error unchanged.
package retry

import (
	"context"
	"time"

	retrygo "github.com/avast/retry-go/v4"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Defaults used by WithRetry.
const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = time.Second
)

// Policy configures a retry loop.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultPolicy returns the policy used by WithRetry.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// WithRetry invokes op, retrying up to maxRetries more times with the default base delay.
func WithRetry(ctx context.Context, op func(ctx context.Context) error, maxRetries int) error {
	return Policy{MaxRetries: maxRetries, BaseDelay: DefaultBaseDelay}.Do(ctx, op)
}

// Do invokes op under the policy.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	base := p.BaseDelay
	if base < 0 {
		base = 0
	}

	// calls is only touched by the retry loop goroutine.
	calls := 0
	v, err := retrygo.DoWithData(
		func() (T, error) {
			calls++
			if calls > 1 {
				metrics.RecordRetry()
			}
			return op(ctx)
		},
		retrygo.Context(ctx),
		retrygo.Attempts(uint(maxRetries)+1),
		retrygo.LastErrorOnly(true),
		retrygo.DelayType(func(_ uint, _ error, _ *retrygo.Config) time.Duration {
			return base * time.Duration(calls)
		}),
		retrygo.OnRetry(func(n uint, err error) {
			logging.Ctx(ctx).Debug().Uint("attempt", n+1).Err(err).Msg("remote operation failed")
		}),
	)
	if err != nil && ctx.Err() == nil {
		metrics.RecordRetryExhausted()
	}
	return v, err
}
