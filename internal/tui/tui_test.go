package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"emberctl/internal/api"
	"emberctl/internal/setup/session"
	"emberctl/internal/setup/wizard"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()

	client, err := api.New(api.Options{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}

	m, err := NewModel(ModelConfig{
		Client:        client,
		Store:         session.NewStore(t.TempDir()),
		RedirectDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	return m
}

func TestLoadStepMeta_CoversEveryStep(t *testing.T) {
	meta, err := loadStepMeta()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, step := range wizard.Steps() {
		entry, ok := meta[step.ID]
		if !ok {
			t.Errorf("step %q missing from catalog", step.ID)
			continue
		}
		if entry.Title == "" {
			t.Errorf("step %q has an empty title", step.ID)
		}
	}
}

func TestValidateAbsoluteURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://panel.example.com", false},
		{"http://localhost:8080", false},
		{"  https://panel.example.com  ", false},
		{"panel.example.com", true},
		{"ftp://panel.example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := validateAbsoluteURL(tt.input)
		if tt.wantErr && err == nil {
			t.Errorf("validateAbsoluteURL(%q): expected error", tt.input)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("validateAbsoluteURL(%q): unexpected error: %v", tt.input, err)
		}
	}
}

func TestModel_WelcomeRenders(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	if !strings.Contains(view, "Welcome") {
		t.Errorf("view missing welcome title:\n%s", view)
	}
	if !strings.Contains(view, "1/6") {
		t.Errorf("view missing step progress:\n%s", view)
	}
}

func TestProgressBar_View(t *testing.T) {
	out := NewProgressBar(3, 6, 12).View()
	if !strings.Contains(out, "3/6") {
		t.Errorf("view = %q, want step label", out)
	}
	if !strings.Contains(out, "█") || !strings.Contains(out, "░") {
		t.Errorf("view = %q, want filled and pending segments", out)
	}

	if got := NewProgressBar(0, 0, 12).View(); got != "" {
		t.Errorf("zero total = %q, want empty", got)
	}
}

func TestKeyValue_RenderListSkipsAbsent(t *testing.T) {
	out := NewKeyValue().RenderList(
		map[string]string{"Guild ID": "123"},
		[]string{"Guild ID", "Installer"},
	)
	if !strings.Contains(out, "123") {
		t.Errorf("out = %q, want the present key rendered", out)
	}
	if strings.Contains(out, "Installer") {
		t.Errorf("out = %q, absent key should be skipped", out)
	}
}

func TestModel_EnterAdvancesFromWelcome(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)

	if got := m.controller.Current().ID; got != wizard.StepDomains {
		t.Errorf("step = %v, want %v", got, wizard.StepDomains)
	}
	if !strings.Contains(m.View(), "Domains") {
		t.Error("view should render the domains step")
	}
}

func TestModel_AuthSuccessReleasesAuthContext(t *testing.T) {
	m := newTestModel(t)

	cancelled := false
	m.authCancel = func() { cancelled = true }

	m.Update(authDoneMsg{resp: &api.CallbackResponse{
		SessionToken: "tok",
		User:         api.DiscordUser{ID: "1", Username: "ash"},
	}})

	if !cancelled {
		t.Error("expected the auth context to be cancelled after the exchange")
	}
	if m.authCancel != nil {
		t.Error("expected authCancel to be cleared")
	}
}

func TestModel_EscOnFirstStepQuits(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !m.quitting {
		t.Error("expected model to be quitting")
	}
}

func TestModel_EscRetreats(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(*Model)

	if got := m.controller.Current().ID; got != wizard.StepWelcome {
		t.Errorf("step = %v, want %v", got, wizard.StepWelcome)
	}
	if m.quitting {
		t.Error("retreat must not quit")
	}
}

func TestModel_RolesFormRequiresAllRoles(t *testing.T) {
	m := newTestModel(t)

	m.roleList = []api.Role{
		{ID: "r1", Name: "Moderator", Position: 2},
		{ID: "r2", Name: "Member", Position: 1},
	}

	// The matrix has nothing yet; completing the step must be refused
	// with the missing roles named, not crash.
	updated, _ := m.submitStepForTest(t)
	if updated.stepErr == "" {
		t.Error("expected a step-local error for missing role entries")
	}
	if !strings.Contains(updated.stepErr, "Moderator") {
		t.Errorf("error %q should name the missing role", updated.stepErr)
	}
}

// submitStepForTest drives submitStep with the cursor on the roles step.
func (m *Model) submitStepForTest(t *testing.T) (*Model, tea.Cmd) {
	t.Helper()
	for m.controller.Current().ID != wizard.StepRoles {
		m.controller.Advance(context.Background())
	}
	updated, cmd := m.submitStep()
	return updated.(*Model), cmd
}
