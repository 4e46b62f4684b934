package tui

import (
	"fmt"
	"strings"
)

// ProgressBar shows how far through the setup flow the operator is.
type ProgressBar struct {
	theme     *Theme
	current   int
	total     int
	width     int
	showLabel bool
}

// NewProgressBar creates a progress bar at current out of total steps.
func NewProgressBar(current, total, width int) *ProgressBar {
	return &ProgressBar{
		theme:     DefaultTheme(),
		current:   current,
		total:     total,
		width:     width,
		showLabel: true,
	}
}

// ShowLabel toggles the "n/m" suffix.
func (p *ProgressBar) ShowLabel(show bool) {
	p.showLabel = show
}

// View renders the bar.
func (p *ProgressBar) View() string {
	if p.total == 0 {
		return ""
	}

	filled := p.width * p.current / p.total
	if filled > p.width {
		filled = p.width
	}
	bar := p.theme.ProgressComplete.Render(strings.Repeat("█", filled)) +
		p.theme.ProgressPending.Render(strings.Repeat("░", p.width-filled))

	if p.showLabel {
		return p.theme.ProgressBar.Render(bar) + p.theme.Info.Render(fmt.Sprintf(" %d/%d", p.current, p.total))
	}
	return p.theme.ProgressBar.Render(bar)
}

// StatusIndicator renders one-line status messages with an icon. The
// wizard uses it for inline step errors; the status command uses it for
// the completion summary.
type StatusIndicator struct {
	theme *Theme
}

// NewStatusIndicator creates a status indicator.
func NewStatusIndicator() *StatusIndicator {
	return &StatusIndicator{theme: DefaultTheme()}
}

// Success renders a success message.
func (s *StatusIndicator) Success(message string) string {
	return s.theme.Success.Render(fmt.Sprintf("%s %s", IconCheck, message))
}

// Error renders an error message.
func (s *StatusIndicator) Error(message string) string {
	return s.theme.Error.Render(fmt.Sprintf("%s %s", IconCross, message))
}

// Warning renders a warning message.
func (s *StatusIndicator) Warning(message string) string {
	return s.theme.Warning.Render(fmt.Sprintf("%s %s", IconWarning, message))
}

// Info renders an informational message.
func (s *StatusIndicator) Info(message string) string {
	return s.theme.Info.Render(fmt.Sprintf("%s %s", IconInfo, message))
}

// Pending renders a not-yet-done message.
func (s *StatusIndicator) Pending(message string) string {
	return s.theme.Blurred.Render(fmt.Sprintf("%s %s", IconCircle, message))
}

// Box frames content with an optional title, used for the completion
// message.
type Box struct {
	theme   *Theme
	title   string
	content string
	width   int
}

// NewBox creates a box.
func NewBox(title, content string, width int) *Box {
	return &Box{
		theme:   DefaultTheme(),
		title:   title,
		content: content,
		width:   width,
	}
}

// View renders the box.
func (b *Box) View() string {
	var content strings.Builder
	if b.title != "" {
		content.WriteString(b.theme.BoxTitle.Render(b.title))
		content.WriteString("\n\n")
	}
	content.WriteString(b.content)
	return b.theme.Box.Width(b.width).Render(content.String())
}

// KeyValue renders aligned key-value lines for the status command.
type KeyValue struct {
	theme *Theme
}

// NewKeyValue creates a key-value renderer.
func NewKeyValue() *KeyValue {
	return &KeyValue{theme: DefaultTheme()}
}

// Render renders one pair.
func (kv *KeyValue) Render(key, value string) string {
	return kv.theme.Focused.Width(20).Render(key+":") + " " + kv.theme.Base.Render(value)
}

// RenderList renders the pairs named in order, skipping absent keys.
func (kv *KeyValue) RenderList(items map[string]string, order []string) string {
	var lines []string
	for _, key := range order {
		if value, ok := items[key]; ok {
			lines = append(lines, kv.Render(key, value))
		}
	}
	return strings.Join(lines, "\n")
}
