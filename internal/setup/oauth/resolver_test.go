package oauth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"emberctl/internal/api"
)

type stubExchanger struct {
	mu    sync.Mutex
	calls int
	resp  *api.CallbackResponse
	err   error
	// block, when non-nil, stalls the exchange until closed or ctx ends.
	block chan struct{}
}

func (s *stubExchanger) ExchangeCallback(ctx context.Context, code, state, guildID string) (*api.CallbackResponse, error) {
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
	return s.resp, s.err
}

func (s *stubExchanger) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestResolver_ExchangesOnce(t *testing.T) {
	stub := &stubExchanger{resp: &api.CallbackResponse{SessionToken: "tok"}}
	r := NewResolver(stub, nil)

	first, err := r.Resolve(context.Background(), "code-1", "state", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.SessionToken != "tok" {
		t.Errorf("SessionToken = %q, want %q", first.SessionToken, "tok")
	}

	// Redundant activations replay the redirect with the same code.
	for i := 0; i < 3; i++ {
		again, err := r.Resolve(context.Background(), "code-1", "state", "")
		if err != nil {
			t.Fatalf("duplicate resolve %d: unexpected error: %v", i, err)
		}
		if again != first {
			t.Errorf("duplicate resolve %d: expected cached result", i)
		}
	}

	if got := stub.callCount(); got != 1 {
		t.Errorf("exchange calls = %d, want 1", got)
	}
}

func TestResolver_DuplicateWhileInflight(t *testing.T) {
	stub := &stubExchanger{
		resp:  &api.CallbackResponse{SessionToken: "tok"},
		block: make(chan struct{}),
	}
	r := NewResolver(stub, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := r.Resolve(context.Background(), "code-1", "state", ""); err != nil {
			t.Errorf("first resolve: unexpected error: %v", err)
		}
	}()

	// Wait for the first exchange to be underway.
	for stub.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	if _, err := r.Resolve(context.Background(), "code-1", "state", ""); !errors.Is(err, ErrExchangeInFlight) {
		t.Errorf("expected ErrExchangeInFlight, got %v", err)
	}

	close(stub.block)
	<-done

	if got := stub.callCount(); got != 1 {
		t.Errorf("exchange calls = %d, want 1", got)
	}
}

func TestResolver_CancellationAllowsRetry(t *testing.T) {
	stub := &stubExchanger{
		resp:  &api.CallbackResponse{SessionToken: "tok"},
		block: make(chan struct{}),
	}
	r := NewResolver(stub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for stub.callCount() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	if _, err := r.Resolve(ctx, "code-1", "state", ""); !api.IsCanceled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}

	// The cancelled attempt must not have consumed the code.
	close(stub.block)
	resp, err := r.Resolve(context.Background(), "code-1", "state", "")
	if err != nil {
		t.Fatalf("retry after cancel: unexpected error: %v", err)
	}
	if resp.SessionToken != "tok" {
		t.Errorf("SessionToken = %q, want %q", resp.SessionToken, "tok")
	}

	if got := stub.callCount(); got != 2 {
		t.Errorf("exchange calls = %d, want 2", got)
	}
}

func TestResolver_FailureConsumesCode(t *testing.T) {
	wantErr := &api.Error{StatusCode: 400, Message: "invalid code"}
	stub := &stubExchanger{err: wantErr}
	r := NewResolver(stub, nil)

	if _, err := r.Resolve(context.Background(), "code-1", "state", ""); !errors.Is(err, wantErr) {
		t.Fatalf("expected exchange error, got %v", err)
	}

	// The single-use code is dead; a replay must not hit the network.
	if _, err := r.Resolve(context.Background(), "code-1", "state", ""); !errors.Is(err, wantErr) {
		t.Errorf("expected cached error, got %v", err)
	}
	if got := stub.callCount(); got != 1 {
		t.Errorf("exchange calls = %d, want 1", got)
	}
}

func TestResolver_NewCodeResetsGuard(t *testing.T) {
	stub := &stubExchanger{resp: &api.CallbackResponse{SessionToken: "tok"}}
	r := NewResolver(stub, nil)

	if _, err := r.Resolve(context.Background(), "code-1", "state", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Resolve(context.Background(), "code-2", "state", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stub.callCount(); got != 2 {
		t.Errorf("exchange calls = %d, want 2", got)
	}
}

func TestResolver_Reset(t *testing.T) {
	stub := &stubExchanger{resp: &api.CallbackResponse{SessionToken: "tok"}}
	r := NewResolver(stub, nil)

	if _, err := r.Resolve(context.Background(), "code-1", "state", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Reset()
	if _, err := r.Resolve(context.Background(), "code-1", "state", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stub.callCount(); got != 2 {
		t.Errorf("exchange calls = %d, want 2", got)
	}
}

func TestListener_DeliversFirstCallback(t *testing.T) {
	l, err := NewListener("")
	if err != nil {
		t.Fatalf("failed to start listener: %v", err)
	}
	defer l.Close()

	uri := l.RedirectURI()

	resp, err := http.Get(uri + "?code=abc&state=xyz&guild_id=42")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cb, err := l.Wait(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.Code != "abc" || cb.State != "xyz" || cb.GuildID != "42" {
		t.Errorf("callback = %+v, want code=abc state=xyz guild=42", cb)
	}

	// A replayed redirect is answered but not delivered again.
	resp2, err := http.Get(uri + "?code=other")
	if err != nil {
		t.Fatalf("replay request failed: %v", err)
	}
	resp2.Body.Close()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel2()
	if _, err := l.Wait(ctx2); err == nil {
		t.Error("expected timeout waiting for a second delivery")
	}
}

func TestListener_WaitCancellation(t *testing.T) {
	l, err := NewListener("")
	if err != nil {
		t.Fatalf("failed to start listener: %v", err)
	}
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type stubAuthURL struct {
	url string
	err error
}

func (s *stubAuthURL) AuthURL(ctx context.Context) (string, error) {
	return s.url, s.err
}

func TestFlow_StartAuth(t *testing.T) {
	l, err := NewListener("")
	if err != nil {
		t.Fatalf("failed to start listener: %v", err)
	}
	defer l.Close()

	var opened string
	flow := &Flow{
		Client:   &stubAuthURL{url: "https://discord.com/oauth2/authorize?x=1"},
		Listener: l,
		OpenURL: func(url string) error {
			opened = url
			resp, err := http.Get(l.RedirectURI() + "?code=abc&state=xyz")
			if err != nil {
				return err
			}
			resp.Body.Close()
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cb, err := flow.StartAuth(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opened != "https://discord.com/oauth2/authorize?x=1" {
		t.Errorf("opened URL = %q", opened)
	}
	if cb.Code != "abc" {
		t.Errorf("Code = %q, want %q", cb.Code, "abc")
	}
}

func TestFlow_BrowserFailureFallsBackToPrint(t *testing.T) {
	l, err := NewListener("")
	if err != nil {
		t.Fatalf("failed to start listener: %v", err)
	}
	defer l.Close()

	var printed string
	flow := &Flow{
		Client:   &stubAuthURL{url: "https://discord.com/oauth2/authorize"},
		Listener: l,
		OpenURL:  func(string) error { return errors.New("no display") },
		PrintURL: func(url string) {
			printed = url
			go func() {
				resp, err := http.Get(l.RedirectURI() + "?code=abc")
				if err == nil {
					resp.Body.Close()
				}
			}()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := flow.StartAuth(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if printed == "" {
		t.Error("expected URL to be printed when the browser fails")
	}
}

func TestFlow_DeniedAuthorization(t *testing.T) {
	l, err := NewListener("")
	if err != nil {
		t.Fatalf("failed to start listener: %v", err)
	}
	defer l.Close()

	flow := &Flow{
		Client:   &stubAuthURL{url: "https://discord.com/oauth2/authorize"},
		Listener: l,
		OpenURL: func(string) error {
			resp, err := http.Get(l.RedirectURI() + "?error=access_denied")
			if err != nil {
				return err
			}
			resp.Body.Close()
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := flow.StartAuth(ctx); err == nil {
		t.Fatal("expected error for denied authorization")
	}
}
