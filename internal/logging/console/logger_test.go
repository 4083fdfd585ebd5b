package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/logging/console"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var fixedTime = time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

func newProvider(buf *bytes.Buffer, level console.Level, colored bool) interfaces.LoggerProvider {
	return console.NewProvider(console.Options{
		Writer:   buf,
		TimeFunc: func() time.Time { return fixedTime },
		MinLevel: &level,
		Color:    &colored,
	})
}

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	provider := newProvider(&buf, console.LevelDebug, false)

	logger := logging.WithFields(provider.GetLogger("folio.admin"), map[string]any{"module": "folio.admin"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"correlation_id": "req-1234",
	})
	logger = logger.WithContext(ctx)

	projectID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("project.created",
		"project_id", projectID,
		"publish_at", time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
	)

	got := strings.TrimSpace(buf.String())
	want := "2024-03-14T15:09:26.535897Z INFO project.created correlation_id=req-1234 logger=folio.admin module=folio.admin project_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 publish_at=2024-03-15T08:00:00Z"
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newProvider(&buf, console.LevelInfo, false).GetLogger("folio.test")

	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "included.info") || strings.Contains(lines[0], "ignored.debug") {
		t.Fatalf("unexpected output %s", lines[0])
	}
}

func TestConsoleLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := newProvider(&buf, console.LevelDebug, false).GetLogger("folio.auth")

	logger.Warn("auth.login.denied", "email", "owner@example.com", "password", "hunter2", "Token", "abc", "error", errors.New("bad credentials"))

	line := buf.String()
	if strings.Contains(line, "hunter2") || strings.Contains(line, "abc ") {
		t.Fatalf("expected secrets redacted, got %s", line)
	}
	if !strings.Contains(line, "password=[redacted]") || !strings.Contains(line, `error="bad credentials"`) {
		t.Fatalf("unexpected output %s", line)
	}
}

func TestConsoleLogger_PositionalArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := newProvider(&buf, console.LevelDebug, false).GetLogger("folio.test")

	logger.Info("odd.args", 42, "value", "dangling")

	line := buf.String()
	if !strings.Contains(line, "field_0=value") || !strings.Contains(line, "field_1=dangling") {
		t.Fatalf("expected positional fields, got %s", line)
	}
}

func TestConsoleLogger_ColoredLevel(t *testing.T) {
	var buf bytes.Buffer
	newProvider(&buf, console.LevelDebug, true).GetLogger("folio.test").Error("boom")

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ansi colour codes, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		" DEBUG ": console.LevelDebug,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
		"nope":    console.LevelInfo,
	}
	for input, want := range cases {
		if got := console.ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}
