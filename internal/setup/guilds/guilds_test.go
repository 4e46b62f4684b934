package guilds

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"emberctl/internal/api"
)

type stubLister struct {
	mu     sync.Mutex
	calls  int
	guilds []api.Guild
	err    error
	block  chan struct{}
}

func (s *stubLister) ListGuilds(ctx context.Context, sessionToken string) ([]api.Guild, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.guilds, s.err
}

func (s *stubLister) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestFetcher_FetchesOnce(t *testing.T) {
	stub := &stubLister{guilds: []api.Guild{{ID: "1", Name: "Ember HQ"}}}
	f := NewFetcher(stub, nil)

	first, err := f.Fetch(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 || first[0].Name != "Ember HQ" {
		t.Errorf("guilds = %+v", first)
	}

	for i := 0; i < 3; i++ {
		again, err := f.Fetch(context.Background(), "tok")
		if err != nil {
			t.Fatalf("duplicate fetch %d: unexpected error: %v", i, err)
		}
		if len(again) != 1 {
			t.Errorf("duplicate fetch %d: guilds = %+v", i, again)
		}
	}

	if got := stub.callCount(); got != 1 {
		t.Errorf("listing calls = %d, want 1", got)
	}
}

func TestFetcher_DuplicateWhileInflight(t *testing.T) {
	stub := &stubLister{block: make(chan struct{})}
	f := NewFetcher(stub, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.Fetch(context.Background(), "tok") //nolint:errcheck
	}()

	for stub.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	if _, err := f.Fetch(context.Background(), "tok"); !errors.Is(err, ErrFetchInFlight) {
		t.Errorf("expected ErrFetchInFlight, got %v", err)
	}

	close(stub.block)
	<-done
}

func TestFetcher_CancellationAllowsRetry(t *testing.T) {
	stub := &stubLister{
		guilds: []api.Guild{{ID: "1"}},
		block:  make(chan struct{}),
	}
	f := NewFetcher(stub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for stub.callCount() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	if _, err := f.Fetch(ctx, "tok"); !api.IsCanceled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}

	close(stub.block)
	guilds, err := f.Fetch(context.Background(), "tok")
	if err != nil {
		t.Fatalf("retry after cancel: unexpected error: %v", err)
	}
	if len(guilds) != 1 {
		t.Errorf("guilds = %+v", guilds)
	}
	if got := stub.callCount(); got != 2 {
		t.Errorf("listing calls = %d, want 2", got)
	}
}

func TestFetcher_Reset(t *testing.T) {
	stub := &stubLister{guilds: []api.Guild{{ID: "1"}}}
	f := NewFetcher(stub, nil)

	if _, err := f.Fetch(context.Background(), "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Reset()
	if _, err := f.Fetch(context.Background(), "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stub.callCount(); got != 2 {
		t.Errorf("listing calls = %d, want 2", got)
	}
}

func TestFormatError_RateLimited(t *testing.T) {
	err := &api.Error{StatusCode: 429, Message: "slow down", RetryAfter: 30}

	msg := FormatError(err)
	if !strings.Contains(msg, "rate limit") {
		t.Errorf("message %q should mention the rate limit", msg)
	}
	if !strings.Contains(msg, "30 seconds") {
		t.Errorf("message %q should carry the concrete cooldown", msg)
	}
}

func TestFormatError_Generic(t *testing.T) {
	msg := FormatError(errors.New("connection refused"))
	if !strings.Contains(msg, "connection refused") {
		t.Errorf("message %q should carry the cause", msg)
	}
}

func TestValidateManualID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"12345678901234567", false},
		{"12345678901234567890", false},
		{"1234567890123456", true},      // too short
		{"123456789012345678901", true}, // too long
		{"1234567890123456a", true},     // non-digit
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateManualID(tt.id)
		if tt.wantErr && err == nil {
			t.Errorf("ValidateManualID(%q): expected error", tt.id)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("ValidateManualID(%q): unexpected error: %v", tt.id, err)
		}
	}
}
