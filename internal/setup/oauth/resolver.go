// Package oauth drives the Discord sign-in step: it opens the
// authorization URL, receives the redirect on a loopback listener, and
// exchanges the single-use code with the backend exactly once.
package oauth

import (
	"context"
	"errors"
	"sync"

	"emberctl/internal/api"
	"emberctl/internal/logger"
)

// ErrExchangeInFlight is returned when a duplicate Resolve call arrives
// while the exchange for the same code is still running.
var ErrExchangeInFlight = errors.New("oauth: code exchange already in flight")

// exchangeClient is the slice of the API client the resolver needs.
type exchangeClient interface {
	ExchangeCallback(ctx context.Context, code, state, guildID string) (*api.CallbackResponse, error)
}

type exchangeState int

const (
	stateIdle exchangeState = iota
	stateInflight
	stateDone
)

// Resolver performs the code-for-session exchange at most once per code.
// The redirect can be replayed (page refresh, a second listener hit, a
// re-entered step), but the code is single-use on the Discord side, so a
// redundant exchange would kill an otherwise good sign-in.
type Resolver struct {
	client exchangeClient
	log    *logger.Logger

	mu     sync.Mutex
	code   string
	state  exchangeState
	result *api.CallbackResponse
	err    error
}

// NewResolver creates a Resolver backed by the given client.
func NewResolver(client exchangeClient, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{client: client, log: log}
}

// Resolve exchanges code for a session. Per code: the first call runs
// the exchange, a call while that exchange is in flight returns
// ErrExchangeInFlight, and any call after it finished returns the first
// outcome without touching the network. Cancellation rewinds the guard
// so a deliberate retry of the same code is possible, and the cancelled
// exchange's result is discarded. A new code resets the guard entirely.
func (r *Resolver) Resolve(ctx context.Context, code, state, guildID string) (*api.CallbackResponse, error) {
	r.mu.Lock()
	if r.code == code && code != "" {
		switch r.state {
		case stateInflight:
			r.mu.Unlock()
			return nil, ErrExchangeInFlight
		case stateDone:
			result, err := r.result, r.err
			r.mu.Unlock()
			return result, err
		}
	} else {
		r.code = code
		r.result, r.err = nil, nil
	}
	r.state = stateInflight
	r.mu.Unlock()

	resp, err := r.client.ExchangeCallback(ctx, code, state, guildID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.code != code {
		// A newer callback took over while this exchange ran; its
		// outcome is the one that counts.
		return nil, context.Canceled
	}

	if api.IsCanceled(err) {
		r.state = stateIdle
		return nil, err
	}

	// Success and failure both consume the code: it is single-use
	// upstream, so a failed exchange cannot be retried with it.
	r.state = stateDone
	r.result, r.err = resp, err

	if err != nil {
		r.log.Warn("discord code exchange failed", logger.WithError(err))
	} else {
		r.log.Debug("discord code exchange succeeded", "user_id", resp.User.ID)
	}

	return resp, err
}

// Reset clears the per-code guard, e.g. when the user restarts the
// sign-in step and a fresh code is expected.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = ""
	r.state = stateIdle
	r.result, r.err = nil, nil
}
