// Marquee - Movie & TV Discovery Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package merge runs the one-time reconciliation performed when a guest logs in.
//
// The run has five steps, each isolated from the others' failures:
//
//  1. profile: upsert the account's display record into the Profile Store
//  2. pull: copy favorites, watchlist and ratings from the Account Service
//     into the Profile Store, deleting rows the service no longer has
//  3. guest: insert the guest snapshots into the Profile Store without
//     overwriting anything step 2 established
//  4. push: send Profile Store items the Account Service does not have yet
//  5. clear: remove the guest snapshot keys
//
// Nothing is retried at this level.
package merge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/localstore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
)

// ErrAlreadyRan is returned when a merge for the session token has already started.
var ErrAlreadyRan = errors.New("merge: already ran for this session")

// ErrNoSession is returned for a session without identity or token.
var ErrNoSession = errors.New("merge: session is not authenticated")

// Step names.
const (
	StepProfile = "profile"
	StepPull    = "pull"
	StepGuest   = "guest"
	StepPush    = "push"
	StepClear   = "clear"
)

// DefaultConcurrency bounds the number of concurrent pushes in step 4.
const DefaultConcurrency = 8

// Deps are the orchestrator's collaborators.
type Deps struct {
	Local       localstore.Store
	Profile     profile.Store
	Account     account.Service
	Concurrency int
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step     string         `json:"step"`
	Duration time.Duration  `json:"duration"`
	Items    map[string]int `json:"items,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

func (r *StepResult) count(collection string, n int) {
	if r.Items == nil {
		r.Items = make(map[string]int)
	}
	r.Items[collection] += n
	metrics.RecordMergeItems(r.Step, collection, n)
}

func (r *StepResult) fail(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// Report summarizes a merge run.
type Report struct {
	UserID    string        `json:"user_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Steps     []StepResult  `json:"steps"`
}

// Failed reports whether any step recorded an error.
func (r Report) Failed() bool {
	for _, s := range r.Steps {
		if len(s.Errors) > 0 {
			return true
		}
	}
	return false
}

// Step returns the result of the named step.
func (r Report) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Orchestrator runs login merges.
type Orchestrator struct {
	deps Deps
	log  zerolog.Logger

	mu  sync.Mutex
	ran map[string]struct{}
}

// New creates an Orchestrator.
func New(d Deps) *Orchestrator {
	if d.Concurrency <= 0 {
		d.Concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		deps: d,
		log:  logging.WithComponent("merge"),
		ran:  make(map[string]struct{}),
	}
}

// claim marks token as merged. It returns false when it already was.
func (o *Orchestrator) claim(token string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.ran[token]; ok {
		return false
	}
	o.ran[token] = struct{}{}
	return true
}

// Run performs the merge for s. It runs at most once per session token;
// later or concurrent calls return ErrAlreadyRan. Step failures are recorded
// in the report and never abort the run.
func (o *Orchestrator) Run(ctx context.Context, s models.Session) (Report, error) {
	if !s.Authenticated() {
		return Report{}, ErrNoSession
	}
	if !o.claim(s.Token) {
		return Report{}, ErrAlreadyRan
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx).With().Str("component", "merge").Str("user_id", s.UserID).Logger()
	report := Report{UserID: s.UserID, StartedAt: time.Now().UTC()}
	log.Info().Msg("Login merge started")

	var remote remoteSets
	steps := []struct {
		name string
		run  func(ctx context.Context, r *StepResult)
	}{
		{StepProfile, func(ctx context.Context, r *StepResult) { o.upsertProfile(ctx, s, r) }},
		{StepPull, func(ctx context.Context, r *StepResult) { remote = o.pull(ctx, s, r) }},
		{StepGuest, func(ctx context.Context, r *StepResult) { o.mergeGuest(ctx, s, r) }},
		{StepPush, func(ctx context.Context, r *StepResult) { o.push(ctx, s, remote, r) }},
		{StepClear, func(ctx context.Context, r *StepResult) { o.clearGuest(r) }},
	}
	for _, step := range steps {
		res := StepResult{Step: step.name}
		start := time.Now()
		step.run(ctx, &res)
		res.Duration = time.Since(start)

		var stepErr error
		if len(res.Errors) > 0 {
			stepErr = errors.New(res.Errors[0])
			log.Warn().Str("step", step.name).Strs("errors", res.Errors).Msg("Merge step finished with errors")
		} else {
			log.Debug().Str("step", step.name).Dur("duration", res.Duration).Interface("items", res.Items).Msg("Merge step finished")
		}
		metrics.RecordMergeStep(step.name, res.Duration, stepErr)
		report.Steps = append(report.Steps, res)
	}

	report.Duration = time.Since(report.StartedAt)
	result := metrics.ResultSuccess
	if report.Failed() {
		result = metrics.ResultFailure
	}
	metrics.RecordMergeRun(result)
	log.Info().Dur("duration", report.Duration).Bool("failed", report.Failed()).Msg("Login merge finished")
	return report, nil
}

func (o *Orchestrator) upsertProfile(ctx context.Context, s models.Session, r *StepResult) {
	p, err := o.deps.Account.Account(ctx, s.Token)
	if err != nil {
		r.fail(err)
		p = models.Profile{}
	}
	if p.UserID == "" {
		p.UserID = s.UserID
	}
	if err := o.deps.Profile.UpsertProfile(ctx, p); err != nil {
		r.fail(err)
		return
	}
	r.count("profile", 1)
}

func (o *Orchestrator) clearGuest(r *StepResult) {
	for _, key := range localstore.GuestKeys {
		if err := o.deps.Local.RemoveItem(key); err != nil {
			r.fail(err)
			continue
		}
		r.count(key, 1)
	}
}
