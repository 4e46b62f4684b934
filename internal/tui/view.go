package tui

import (
	"fmt"
	"strings"

	"emberctl/internal/setup/wizard"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(SmallBanner())
	b.WriteString("  ")
	b.WriteString(m.renderTrail())
	b.WriteString("\n")
	b.WriteString(NewProgressBar(m.controller.Index()+1, len(wizard.Steps()), 24).View())
	b.WriteString("\n\n")

	meta := m.meta[m.controller.Current().ID]
	b.WriteString(m.theme.Title.Render(meta.Title))
	b.WriteString("\n")
	if meta.Description != "" {
		b.WriteString(m.theme.Description.Render(meta.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderStep(meta))

	if m.stepErr != "" {
		b.WriteString("\n")
		b.WriteString(NewStatusIndicator().Error(m.stepErr))
		b.WriteString("\n")
	}

	if meta.Help != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Help.Render(meta.Help))
	}
	b.WriteString("\n")
	b.WriteString(m.renderKeys())

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// renderTrail draws the step progress indicator.
func (m *Model) renderTrail() string {
	steps := wizard.Steps()
	current := m.controller.Index()

	parts := make([]string, 0, len(steps))
	for i, step := range steps {
		var mark string
		switch {
		case i < current:
			mark = m.theme.StepComplete.Render(IconCheck)
		case i == current:
			mark = m.theme.StepCurrent.Render(IconDot)
		default:
			mark = m.theme.StepPending.Render(IconCircle)
		}
		title := m.meta[step.ID].Title
		if i == current {
			parts = append(parts, mark+" "+m.theme.StepCurrent.Render(title))
		} else {
			parts = append(parts, mark)
		}
	}

	return strings.Join(parts, " ")
}

func (m *Model) renderStep(meta StepMeta) string {
	switch m.controller.Current().ID {
	case wizard.StepWelcome:
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Foreground(ColorPrimary).Render(Banner()))
		b.WriteString("\n")
		b.WriteString(m.theme.Base.Render(meta.Content))
		b.WriteString("\n\n")
		b.WriteString(m.theme.Help.Render("Press Enter to begin"))
		return b.String()

	case wizard.StepDomains:
		return m.renderForm(m.domainsForm)

	case wizard.StepDiscord:
		return m.renderDiscord()

	case wizard.StepGuild:
		if !m.controller.CanRun(m.controller.Current()) {
			return m.renderLocked()
		}
		if m.phase == phaseLoading {
			return m.spin.View() + " Loading your servers..."
		}
		return m.renderForm(m.guildForm)

	case wizard.StepRoles:
		if !m.controller.CanRun(m.controller.Current()) {
			return m.renderLocked()
		}
		if m.phase == phaseLoading {
			return m.spin.View() + " Loading server roles..."
		}
		return m.renderRoles()

	case wizard.StepComplete:
		return m.renderComplete()
	}

	return ""
}

func (m *Model) renderDiscord() string {
	if m.phase == phaseIdle && m.controller.Session().HasToken() {
		name := "your Discord account"
		if u := m.controller.Session().User; u != nil {
			name = u.Username
		}
		var b strings.Builder
		b.WriteString(NewStatusIndicator().Success("Signed in as " + name))
		b.WriteString("\n\n")
		b.WriteString(m.theme.Help.Render("Press Enter to continue, or r to sign in again"))
		return b.String()
	}

	if m.phase == phaseLoading {
		var b strings.Builder
		b.WriteString(m.spin.View())
		b.WriteString(" Waiting for the Discord authorization...")
		if m.authURL != "" {
			b.WriteString("\n\n")
			b.WriteString(m.theme.Base.Render("If your browser did not open, visit:"))
			b.WriteString("\n  ")
			b.WriteString(m.theme.Focused.Render(m.authURL))
		}
		return b.String()
	}

	return m.theme.Base.Render("Sign-in not started.")
}

func (m *Model) renderRoles() string {
	var b strings.Builder
	if m.guildName != "" {
		b.WriteString(m.theme.Subtitle.Render(m.guildName))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderForm(m.rolesForm))
	return b.String()
}

func (m *Model) renderComplete() string {
	var content strings.Builder
	content.WriteString(NewStatusIndicator().Success("Your Ember panel is ready."))
	if m.cfg.DashboardURL != "" {
		content.WriteString("\n\n")
		content.WriteString(m.theme.Base.Render("Opening the dashboard: "))
		content.WriteString(m.theme.Focused.Render(m.cfg.DashboardURL))
	}

	var b strings.Builder
	b.WriteString(NewBox("Setup complete", content.String(), 60).View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render("Press Enter to close"))
	return b.String()
}

// renderLocked is the fallback for a step whose prerequisites are
// missing; the controller never blocks rendering.
func (m *Model) renderLocked() string {
	var b strings.Builder
	b.WriteString(NewStatusIndicator().Warning("Sign in with Discord first."))
	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render("Press Esc to go back to the sign-in step"))
	return b.String()
}

func (m *Model) renderForm(form *huh.Form) string {
	if form == nil {
		return ""
	}
	if m.phase == phaseSubmitting {
		return m.spin.View() + " Saving..."
	}
	return form.View()
}

func (m *Model) renderKeys() string {
	keys := []string{"esc back", "ctrl+c quit"}
	if m.stepErr != "" {
		keys = append([]string{"r retry"}, keys...)
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		key, desc, _ := strings.Cut(k, " ")
		parts = append(parts, fmt.Sprintf("%s %s",
			m.theme.HelpKey.Render(key),
			m.theme.HelpDesc.Render(desc)))
	}
	return strings.Join(parts, "  ")
}
