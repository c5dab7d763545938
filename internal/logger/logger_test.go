package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSanitizeAttributes(t *testing.T) {
	redacted := []string{
		"password", "Password", "PASSWORD",
		"pin", "token", "secret", "api_key",
		"user_password", "jwt_token", "password_hash",
	}
	for _, key := range redacted {
		attr := sanitizeAttributes(nil, slog.String(key, "hunter2"))
		if attr.Value.String() != "[REDACTED]" {
			t.Errorf("key %q: expected redaction, got %q", key, attr.Value.String())
		}
	}

	passthrough := []string{"username", "user_id", "ip_address", "outcome", "error"}
	for _, key := range passthrough {
		attr := sanitizeAttributes(nil, slog.String(key, "value"))
		if attr.Value.String() != "value" {
			t.Errorf("key %q: expected passthrough, got %q", key, attr.Value.String())
		}
	}
}

func TestLoggerRedactsSecretsEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: sanitizeAttributes,
	}))

	log.Info("login attempt", "username", "alice", "password", "hunter2", "pin", "123456")

	if strings.Contains(buf.String(), "hunter2") || strings.Contains(buf.String(), "123456") {
		t.Fatalf("secret leaked into log output: %s", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["username"] != "alice" {
		t.Errorf("expected username preserved, got %v", entry["username"])
	}
	if entry["password"] != "[REDACTED]" || entry["pin"] != "[REDACTED]" {
		t.Errorf("expected redacted credentials, got %v", entry)
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelationID(ctx); got != "" {
		t.Errorf("expected empty correlation ID, got %q", got)
	}

	ctx = SetCorrelationID(ctx, "req-123")
	if got := GetCorrelationID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	WithCorrelationID(ctx, log).Info("hello")

	if !strings.Contains(buf.String(), "req-123") {
		t.Errorf("expected correlation ID in output: %s", buf.String())
	}
}
