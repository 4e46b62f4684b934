package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AuditAction represents the type of auditable setup action.
type AuditAction string

const (
	AuditActionCommand     AuditAction = "command"
	AuditActionDomains     AuditAction = "configure_domains"
	AuditActionOAuth       AuditAction = "oauth_exchange"
	AuditActionGuildSelect AuditAction = "select_guild"
	AuditActionRoles       AuditAction = "configure_roles"
	AuditActionComplete    AuditAction = "complete_setup"
	AuditActionReset       AuditAction = "reset_setup"
)

// AuditOutcome represents the result of an auditable action.
type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "success"
	AuditOutcomeFailure AuditOutcome = "failure"
)

// AuditEvent represents an auditable event.
type AuditEvent struct {
	Action    AuditAction    `json:"action"`
	Actor     string         `json:"actor"`
	Resource  string         `json:"resource"`
	Outcome   AuditOutcome   `json:"outcome"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"request_id,omitempty"`
}

// AuditLogger records setup mutations to a dedicated JSON log file. The
// trail answers "who ran which setup mutation, when, with what outcome"
// after the fact.
type AuditLogger struct {
	logger *slog.Logger
	closer *lumberjack.Logger
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(auditPath string, maxAgeDays int) (*AuditLogger, error) {
	if auditPath == "" {
		return nil, fmt.Errorf("audit path is required")
	}

	if maxAgeDays <= 0 {
		maxAgeDays = 365 // Default to 1 year retention for audit logs
	}

	lj := &lumberjack.Logger{
		Filename:   auditPath,
		MaxSize:    100, // MB
		MaxBackups: 0,   // Keep all backups within MaxAge
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	// Always JSON for audit logs
	handler := slog.NewJSONHandler(lj, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return &AuditLogger{
		logger: slog.New(handler),
		closer: lj,
	}, nil
}

// Log records an audit event.
func (a *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	if a == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.RequestID == "" {
		if cc := CommandContextFrom(ctx); cc != nil {
			event.RequestID = cc.RequestID
		}
	}
	if event.Actor == "" {
		if cc := CommandContextFrom(ctx); cc != nil {
			event.Actor = cc.User
		}
	}

	attrs := []slog.Attr{
		slog.String("action", string(event.Action)),
		slog.String("actor", event.Actor),
		slog.String("resource", event.Resource),
		slog.String("outcome", string(event.Outcome)),
		slog.Time("timestamp", event.Timestamp),
	}

	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}

	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	a.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}

// LogMutation records a setup API mutation audit event.
func (a *AuditLogger) LogMutation(ctx context.Context, action AuditAction, resource string, err error, metadata map[string]any) {
	outcome := AuditOutcomeSuccess
	if err != nil {
		outcome = AuditOutcomeFailure
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["error"] = err.Error()
	}

	a.Log(ctx, AuditEvent{
		Action:   action,
		Resource: resource,
		Outcome:  outcome,
		Metadata: metadata,
	})
}

// LogCommand records a command execution audit event.
func (a *AuditLogger) LogCommand(ctx context.Context, command string, outcome AuditOutcome, metadata map[string]any) {
	a.Log(ctx, AuditEvent{
		Action:   AuditActionCommand,
		Resource: command,
		Outcome:  outcome,
		Metadata: metadata,
	})
}

// Close closes the audit logger.
func (a *AuditLogger) Close() error {
	if a != nil && a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
