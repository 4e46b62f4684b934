package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"emberctl/internal/config"

	"github.com/spf13/cobra"
)

// ==================== Logger Tests ====================

func TestNew_Defaults(t *testing.T) {
	cfg := config.LogConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer logger.Close()

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := config.LogConfig{
		Level:  "verbose",
		Format: "text",
		Output: "stderr",
	}

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emberctl.log")

	cfg := config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Info("setup started", "step", "welcome")
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "setup started") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

func TestNew_MultipleOutputs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "emberctl.log")

	cfg := config.LogConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "stderr,file",
		FilePath: path,
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer logger.Close()

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestLogger_With(t *testing.T) {
	logger := Nop()

	child := logger.With("step", "discord")
	if child == nil {
		t.Fatal("expected non-nil child logger")
	}
	if child == logger {
		t.Error("expected With to return a new logger")
	}
}

func TestLogger_WithGroup(t *testing.T) {
	logger := Nop()

	child := logger.WithGroup("api")
	if child == nil {
		t.Fatal("expected non-nil child logger")
	}
}

func TestLogger_CloseNil(t *testing.T) {
	logger := Nop()
	if err := logger.Close(); err != nil {
		t.Errorf("unexpected error closing logger without file output: %v", err)
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("expected non-nil default logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"trace", 0, true},
	}

	for _, tt := range tests {
		got, err := parseLevel(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseLevel(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLevel(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// ==================== Redaction Tests ====================

func redactingJSONLogger(fields []string) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	inner := slog.NewJSONHandler(buf, nil)
	return slog.New(NewRedactingHandler(inner, fields)), buf
}

func TestRedactingHandler_Handle(t *testing.T) {
	logger, buf := redactingJSONLogger([]string{"session_token"})

	logger.Info("callback resolved", "session_token", "tok-abc123", "guild_id", "42")

	out := buf.String()
	if strings.Contains(out, "tok-abc123") {
		t.Errorf("session token leaked into log output: %s", out)
	}
	if !strings.Contains(out, RedactedValue) {
		t.Errorf("expected redacted placeholder in output: %s", out)
	}
	if !strings.Contains(out, `"guild_id":"42"`) {
		t.Errorf("non-sensitive field should pass through: %s", out)
	}
}

func TestRedactingHandler_SubstringMatch(t *testing.T) {
	logger, buf := redactingJSONLogger([]string{"token"})

	logger.Info("exchange", "session_token", "secret")

	if strings.Contains(buf.String(), "secret") {
		t.Errorf("expected substring field match to redact, got: %s", buf.String())
	}
}

func TestRedactingHandler_WithAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	inner := slog.NewJSONHandler(buf, nil)
	h := NewRedactingHandler(inner, []string{"code"}).WithAttrs([]slog.Attr{
		slog.String("code", "oauth-code-xyz"),
	})

	slog.New(h).Info("exchange started")

	if strings.Contains(buf.String(), "oauth-code-xyz") {
		t.Errorf("pre-bound attr leaked: %s", buf.String())
	}
}

func TestRedactingHandler_NestedGroups(t *testing.T) {
	logger, buf := redactingJSONLogger([]string{"token"})

	logger.Info("session persisted", slog.Group("session",
		slog.String("token", "deep-secret"),
		slog.String("guild", "42"),
	))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	group, ok := entry["session"].(map[string]any)
	if !ok {
		t.Fatalf("expected session group in output: %s", buf.String())
	}
	if group["token"] != RedactedValue {
		t.Errorf("nested token not redacted: %v", group["token"])
	}
	if group["guild"] != "42" {
		t.Errorf("nested non-sensitive field mangled: %v", group["guild"])
	}
}

// ==================== Command Context Tests ====================

func TestNewCommandContext(t *testing.T) {
	cmd := &cobra.Command{Use: "setup"}
	cc := NewCommandContext(cmd, []string{"--fresh"})

	if cc.Command != "setup" {
		t.Errorf("Command = %q, want %q", cc.Command, "setup")
	}
	if cc.RequestID == "" {
		t.Error("expected non-empty RequestID")
	}
	if cc.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestCommandContext_RoundTrip(t *testing.T) {
	cc := NewCommandContext(&cobra.Command{Use: "status"}, nil)
	ctx := WithCommandContext(context.Background(), cc)

	got := CommandContextFrom(ctx)
	if got != cc {
		t.Error("expected same CommandContext from context")
	}
}

func TestCommandContextFrom_NotSet(t *testing.T) {
	if cc := CommandContextFrom(context.Background()); cc != nil {
		t.Errorf("expected nil, got %+v", cc)
	}
}

func TestLoggerFrom_RoundTrip(t *testing.T) {
	logger := Nop()
	ctx := WithLogger(context.Background(), logger)

	if got := LoggerFrom(ctx); got != logger {
		t.Error("expected same logger from context")
	}
	if got := LoggerFrom(context.Background()); got == nil {
		t.Error("expected fallback logger when none in context")
	}
}

// ==================== Error Helper Tests ====================

func TestWrapError(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := WrapError(base, "fetching setup status")

	if wrapped == nil {
		t.Fatal("expected non-nil error")
	}
	if !strings.Contains(wrapped.Error(), "fetching setup status") {
		t.Errorf("missing message: %v", wrapped)
	}
	if !errors.Is(wrapped, base) {
		t.Error("expected wrapped error to unwrap to base")
	}
}

func TestWrapError_Nil(t *testing.T) {
	if err := WrapError(nil, "context"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestWithError(t *testing.T) {
	attr := WithError(errors.New("boom"))
	if attr.Key != "error" {
		t.Errorf("attr key = %q, want %q", attr.Key, "error")
	}
}

func TestWithError_WrappedCaller(t *testing.T) {
	wrapped := WrapError(errors.New("dial tcp: refused"), "probing setup status")

	var we *WrappedError
	if !errors.As(wrapped, &we) {
		t.Fatal("expected a WrappedError")
	}
	if !strings.Contains(we.Caller(), "logger_test.go") {
		t.Errorf("caller = %q, want the wrapping call site", we.Caller())
	}

	attr := WithError(wrapped)
	found := false
	for _, a := range attr.Value.Group() {
		if a.Key == "caller" {
			found = true
		}
	}
	if !found {
		t.Error("expected a caller attribute for wrapped errors")
	}
}

// ==================== Audit Tests ====================

func TestNewAuditLogger_RequiresPath(t *testing.T) {
	if _, err := NewAuditLogger("", 30); err == nil {
		t.Fatal("expected error for empty audit path")
	}
}

func TestAuditLogger_Log(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	audit, err := NewAuditLogger(path, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	audit.Log(context.Background(), AuditEvent{
		Action:   AuditActionReset,
		Actor:    "operator",
		Resource: "setup",
		Outcome:  AuditOutcomeSuccess,
	})
	audit.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("audit entry is not JSON: %v", err)
	}
	if entry["action"] != string(AuditActionReset) {
		t.Errorf("action = %v, want %v", entry["action"], AuditActionReset)
	}
	if entry["outcome"] != string(AuditOutcomeSuccess) {
		t.Errorf("outcome = %v, want %v", entry["outcome"], AuditOutcomeSuccess)
	}
}

func TestAuditLogger_LogMutation_Failure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	audit, err := NewAuditLogger(path, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	audit.LogMutation(context.Background(), AuditActionOAuth, "discord", errors.New("exchange failed"), nil)
	audit.Close()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), string(AuditOutcomeFailure)) {
		t.Errorf("expected failure outcome in audit log: %s", data)
	}
	if !strings.Contains(string(data), "exchange failed") {
		t.Errorf("expected error detail in metadata: %s", data)
	}
}

func TestAuditLogger_NilSafe(t *testing.T) {
	var audit *AuditLogger
	audit.Log(context.Background(), AuditEvent{Action: AuditActionCommand})
	if err := audit.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
