package status

import (
	"context"
	"errors"
	"testing"

	"emberctl/internal/api"
	"emberctl/internal/setup/session"
)

type stubStatus struct {
	status *api.SetupStatus
	err    error
	calls  int
}

func (s *stubStatus) Status(ctx context.Context) (*api.SetupStatus, error) {
	s.calls++
	return s.status, s.err
}

func TestFetcher_RefreshReplacesSnapshot(t *testing.T) {
	stub := &stubStatus{status: &api.SetupStatus{CurrentStep: "discord"}}
	f := NewFetcher(stub, nil)

	st := f.Refresh(context.Background())
	if st == nil || st.CurrentStep != "discord" {
		t.Fatalf("snapshot = %+v, want CurrentStep discord", st)
	}

	stub.status = &api.SetupStatus{CurrentStep: "complete", IsComplete: true}
	st = f.Refresh(context.Background())
	if st == nil || st.CurrentStep != "complete" || !st.IsComplete {
		t.Errorf("snapshot = %+v, want wholesale replacement", st)
	}
}

func TestFetcher_FailureKeepsPriorSnapshot(t *testing.T) {
	stub := &stubStatus{status: &api.SetupStatus{CurrentStep: "discord"}}
	f := NewFetcher(stub, nil)

	if st := f.Refresh(context.Background()); st == nil {
		t.Fatal("expected initial snapshot")
	}

	stub.status = nil
	stub.err = errors.New("connection refused")

	st := f.Refresh(context.Background())
	if st == nil || st.CurrentStep != "discord" {
		t.Errorf("snapshot = %+v, want prior snapshot retained", st)
	}
	if got := f.Current(); got == nil || got.CurrentStep != "discord" {
		t.Errorf("Current() = %+v, want prior snapshot", got)
	}
}

func TestFetcher_NilReceiver(t *testing.T) {
	var f *Fetcher
	if st := f.Refresh(context.Background()); st != nil {
		t.Errorf("Refresh on nil fetcher = %+v, want nil", st)
	}
	if st := f.Current(); st != nil {
		t.Errorf("Current on nil fetcher = %+v, want nil", st)
	}
}

func TestFetcher_RefreshRateLimited(t *testing.T) {
	stub := &stubStatus{status: &api.SetupStatus{}}
	f := NewFetcher(stub, nil)

	for i := 0; i < 10; i++ {
		f.Refresh(context.Background())
	}

	// Burst is 3; the rest must have been served from the snapshot.
	if stub.calls > 3 {
		t.Errorf("status calls = %d, want at most 3", stub.calls)
	}
}

func TestGate_IncompleteRuns(t *testing.T) {
	stub := &stubStatus{status: &api.SetupStatus{IsComplete: false}}
	f := NewFetcher(stub, nil)
	store := session.NewStore(t.TempDir())

	if got := f.Gate(context.Background(), store); got != DecisionRun {
		t.Errorf("Gate = %v, want DecisionRun", got)
	}
}

func TestGate_CompleteWithoutGrantRedirects(t *testing.T) {
	stub := &stubStatus{status: &api.SetupStatus{IsComplete: true}}
	f := NewFetcher(stub, nil)
	store := session.NewStore(t.TempDir())

	if got := f.Gate(context.Background(), store); got != DecisionRedirect {
		t.Errorf("Gate = %v, want DecisionRedirect", got)
	}
}

func TestGate_GrantConsumedOnce(t *testing.T) {
	stub := &stubStatus{status: &api.SetupStatus{IsComplete: true}}
	store := session.NewStore(t.TempDir())

	if err := store.Persist(&session.Session{SessionToken: "stale"}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := store.GrantReset(); err != nil {
		t.Fatalf("grant: %v", err)
	}

	f := NewFetcher(stub, nil)
	if got := f.Gate(context.Background(), store); got != DecisionFreshRun {
		t.Fatalf("Gate = %v, want DecisionFreshRun", got)
	}

	// The fresh run wiped the stale session.
	if sess := store.Hydrate(); sess.HasToken() {
		t.Error("expected session cleared after consumed grant")
	}

	// A second gate finds the grant gone and redirects again.
	f2 := NewFetcher(stub, nil)
	if got := f2.Gate(context.Background(), store); got != DecisionRedirect {
		t.Errorf("second Gate = %v, want DecisionRedirect", got)
	}
}

func TestAllow_FailsOpen(t *testing.T) {
	stub := &stubStatus{err: errors.New("connection refused")}
	if !Allow(context.Background(), stub, nil) {
		t.Error("expected guard to fail open on transport error")
	}
}

func TestAllow_CompleteDenies(t *testing.T) {
	stub := &stubStatus{status: &api.SetupStatus{IsComplete: true}}
	if Allow(context.Background(), stub, nil) {
		t.Error("expected guard to deny when setup is finished")
	}
}

func TestAllow_IncompleteAllows(t *testing.T) {
	stub := &stubStatus{status: &api.SetupStatus{}}
	if !Allow(context.Background(), stub, nil) {
		t.Error("expected guard to allow while setup is unfinished")
	}
}
