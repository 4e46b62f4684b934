// Package status tracks the backend's view of setup progress and gates
// wizard entry on it.
package status

import (
	"context"
	"sync"
	"time"

	"emberctl/internal/api"
	"emberctl/internal/logger"

	"golang.org/x/time/rate"
)

// statusClient is the slice of the API client the fetcher needs.
type statusClient interface {
	Status(ctx context.Context) (*api.SetupStatus, error)
}

// grantStore is the slice of the session store the gate needs.
type grantStore interface {
	TakeResetGrant() bool
	Clear() error
}

// Decision is the gate's verdict on whether the wizard may run.
type Decision int

const (
	// DecisionRun lets the wizard start (or resume).
	DecisionRun Decision = iota
	// DecisionFreshRun lets the wizard start from step zero after a
	// consumed reset grant.
	DecisionFreshRun
	// DecisionRedirect sends the operator to the dashboard because
	// setup already finished.
	DecisionRedirect
)

// Fetcher polls the backend's setup status and keeps the latest good
// snapshot. A failed probe never degrades the snapshot: the wizard keeps
// rendering from the last state it knew rather than flickering empty.
type Fetcher struct {
	client  statusClient
	log     *logger.Logger
	limiter *rate.Limiter

	mu      sync.RWMutex
	current *api.SetupStatus
}

// NewFetcher creates a Fetcher. Refreshes are bounded to one every two
// seconds with a small burst, enough for step transitions without
// hammering the endpoint.
func NewFetcher(client statusClient, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Fetcher{
		client:  client,
		log:     log,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// Refresh queries the backend and, on success, replaces the snapshot
// wholesale. On failure the prior snapshot stays. Returns the snapshot
// in effect after the attempt, which may be nil before the first
// successful probe.
func (f *Fetcher) Refresh(ctx context.Context) *api.SetupStatus {
	if f == nil {
		return nil
	}
	if !f.limiter.Allow() {
		return f.Current()
	}

	st, err := f.client.Status(ctx)
	if err != nil {
		if !api.IsCanceled(err) {
			f.log.Warn("setup status probe failed", logger.WithError(err))
		}
		return f.Current()
	}

	f.mu.Lock()
	f.current = st
	f.mu.Unlock()

	return st
}

// Current returns the latest snapshot without touching the network.
func (f *Fetcher) Current() *api.SetupStatus {
	if f == nil {
		return nil
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Gate decides whether the wizard may run. A finished installation
// redirects to the dashboard unless a one-time reset grant is present;
// the grant is consumed, the session wiped, and the wizard starts from
// step zero.
func (f *Fetcher) Gate(ctx context.Context, store grantStore) Decision {
	st := f.Refresh(ctx)
	if st == nil || !st.IsComplete {
		return DecisionRun
	}

	if store.TakeResetGrant() {
		if err := store.Clear(); err != nil {
			f.log.Warn("failed to clear session for fresh run", "error", err)
		}
		f.log.Info("reset grant consumed, starting setup from scratch")
		return DecisionFreshRun
	}

	return DecisionRedirect
}

// Allow is the guard for non-wizard commands that only make sense while
// setup is unfinished. It fails open: a broken status endpoint must not
// lock operators out of their own tooling.
func Allow(ctx context.Context, client statusClient, log *logger.Logger) bool {
	if log == nil {
		log = logger.Nop()
	}

	st, err := client.Status(ctx)
	if err != nil {
		if !api.IsCanceled(err) {
			log.Warn("setup guard probe failed, allowing anyway", "error", err)
		}
		return true
	}

	return !st.IsComplete
}
