// Package errors provides rich error types and display for the emberctl CLI.
//
// Errors are designed to be user-friendly with:
//   - Clear error codes for documentation/support
//   - Actionable suggestions
//   - Links to documentation
//   - TUI-aware formatting
package errors

import (
	"errors"
	"fmt"
	"strings"

	"emberctl/internal/tui"

	"github.com/charmbracelet/lipgloss"
)

// Code represents an error code for categorization.
type Code string

// Common error codes
const (
	CodeUnknown          Code = "UNKNOWN"
	CodeConfigNotFound   Code = "CONFIG_NOT_FOUND"
	CodeConfigInvalid    Code = "CONFIG_INVALID"
	CodeConnectionFailed Code = "CONNECTION_FAILED"
	CodeAuthFailed       Code = "AUTH_FAILED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeSetupComplete    Code = "SETUP_COMPLETE"
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidation       Code = "VALIDATION"
	CodeTimeout          Code = "TIMEOUT"
	CodeInternal         Code = "INTERNAL"
	CodeUserCancelled    Code = "USER_CANCELLED"
)

// Rich is an enhanced error with additional context for display.
type Rich struct {
	// Code is a unique error code for categorization
	Code Code
	// Message is the user-friendly error message
	Message string
	// Details provides additional technical information
	Details string
	// Suggestions are actionable items the user can try
	Suggestions []string
	// DocURL is a link to relevant documentation
	DocURL string
	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *Rich) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Rich) Unwrap() error {
	return e.Cause
}

// New creates a new Rich error.
func New(code Code, message string) *Rich {
	return &Rich{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code Code, message string) *Rich {
	return &Rich{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetails adds technical details to the error.
func (e *Rich) WithDetails(details string) *Rich {
	e.Details = details
	return e
}

// WithSuggestions adds actionable suggestions.
func (e *Rich) WithSuggestions(suggestions ...string) *Rich {
	e.Suggestions = suggestions
	return e
}

// WithDocURL adds a documentation link.
func (e *Rich) WithDocURL(url string) *Rich {
	e.DocURL = url
	return e
}

// WithCause sets the underlying cause.
func (e *Rich) WithCause(cause error) *Rich {
	e.Cause = cause
	return e
}

// IsRich checks if an error is a Rich error.
func IsRich(err error) bool {
	var rich *Rich
	return errors.As(err, &rich)
}

// AsRich converts an error to a Rich error if possible.
func AsRich(err error) *Rich {
	var rich *Rich
	if errors.As(err, &rich) {
		return rich
	}
	return nil
}

// Display formats and prints the error with TUI styling.
func Display(err error, theme *tui.Theme) string {
	if theme == nil {
		theme = tui.DefaultTheme()
	}

	rich := AsRich(err)
	if rich == nil {
		// Wrap plain error
		rich = Wrap(err, CodeUnknown, err.Error())
	}

	var b strings.Builder

	// Error box style
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tui.ColorError).
		Padding(0, 1).
		Width(60)

	codeStyle := lipgloss.NewStyle().
		Foreground(tui.ColorTextMuted).
		Italic(true)

	b.WriteString(theme.Error.Render(tui.IconCross + " Error"))
	b.WriteString(" ")
	b.WriteString(codeStyle.Render(fmt.Sprintf("[%s]", rich.Code)))
	b.WriteString("\n\n")

	// Message
	b.WriteString(theme.Base.Render(rich.Message))
	b.WriteString("\n")

	// Details
	if rich.Details != "" {
		b.WriteString("\n")
		b.WriteString(theme.Description.Render(rich.Details))
		b.WriteString("\n")
	}

	// Cause
	if rich.Cause != nil {
		b.WriteString("\n")
		b.WriteString(theme.Blurred.Render("Caused by: " + rich.Cause.Error()))
		b.WriteString("\n")
	}

	// Suggestions
	if len(rich.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Info.Render("💡 Suggestions:"))
		b.WriteString("\n")

		for _, s := range rich.Suggestions {
			b.WriteString("   " + tui.IconBullet + " ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	// Doc URL
	if rich.DocURL != "" {
		b.WriteString("\n")
		urlStyle := lipgloss.NewStyle().
			Foreground(tui.ColorInfo).
			Underline(true)
		b.WriteString("📖 ")
		b.WriteString(urlStyle.Render(rich.DocURL))
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String())
}

// DisplaySimple formats an error for non-TUI output.
func DisplaySimple(err error) string {
	rich := AsRich(err)
	if rich == nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Error [%s]: %s\n", rich.Code, rich.Message))

	if rich.Details != "" {
		b.WriteString(fmt.Sprintf("  Details: %s\n", rich.Details))
	}

	if rich.Cause != nil {
		b.WriteString(fmt.Sprintf("  Caused by: %v\n", rich.Cause))
	}

	if len(rich.Suggestions) > 0 {
		b.WriteString("  Suggestions:\n")
		for _, s := range rich.Suggestions {
			b.WriteString(fmt.Sprintf("    - %s\n", s))
		}
	}

	if rich.DocURL != "" {
		b.WriteString(fmt.Sprintf("  Documentation: %s\n", rich.DocURL))
	}

	return b.String()
}

// Common errors with helpful messages

// ConfigInvalid returns a config validation error.
func ConfigInvalid(path string, validationErr error) *Rich {
	return New(CodeConfigInvalid, "Configuration file is invalid").
		WithDetails(fmt.Sprintf("File: %s", path)).
		WithCause(validationErr).
		WithSuggestions(
			"Check the configuration file syntax",
			"Delete the file to regenerate the defaults",
		).
		WithDocURL("https://docs.ember.gg/panel/configuration")
}

// ConnectionFailed returns a connection error.
func ConnectionFailed(addr string, cause error) *Rich {
	return New(CodeConnectionFailed, "Failed to reach the Ember panel").
		WithDetails(fmt.Sprintf("Address: %s", addr)).
		WithCause(cause).
		WithSuggestions(
			"Verify the panel is running and reachable",
			"Check the API base URL in your config or the '--api' flag",
			"Verify network connectivity",
		).
		WithDocURL("https://docs.ember.gg/panel/first-boot")
}

// AuthFailed returns a Discord authentication error.
func AuthFailed(cause error) *Rich {
	return New(CodeAuthFailed, "Discord sign-in failed").
		WithCause(cause).
		WithSuggestions(
			"Restart the Discord sign-in step and authorize again",
			"Verify the Discord application credentials on the panel",
			"Check that the authorization was not cancelled in the browser",
		).
		WithDocURL("https://docs.ember.gg/panel/discord-oauth")
}

// RateLimited returns a rate limit error.
func RateLimited(retryAfter int) *Rich {
	return New(CodeRateLimited, "You're being rate limited").
		WithDetails(fmt.Sprintf("Please wait %d seconds before trying again.", retryAfter)).
		WithSuggestions(
			"Wait for the cooldown to pass, then retry",
		)
}

// SetupAlreadyComplete returns an error for a finished installation.
func SetupAlreadyComplete() *Rich {
	return New(CodeSetupComplete, "Setup has already been completed").
		WithSuggestions(
			"Open the dashboard to manage this installation",
			"Run 'emberctl reset' to wipe the setup and start over",
		)
}

// UserCancelled returns an error indicating the user cancelled the operation.
func UserCancelled() *Rich {
	return New(CodeUserCancelled, "Operation cancelled by user")
}

// Timeout returns a timeout error.
func Timeout(operation string, duration string) *Rich {
	return New(CodeTimeout, fmt.Sprintf("Operation timed out: %s", operation)).
		WithDetails(fmt.Sprintf("Timeout after: %s", duration)).
		WithSuggestions(
			"Try the operation again",
			"Check if the panel is under heavy load",
			"Increase the timeout in your config",
		)
}
