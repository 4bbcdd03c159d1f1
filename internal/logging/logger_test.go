package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerRendersComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)

	logger := slog.New(newPrettyHandler(&buf, lvl))
	logger = WithComponent(logger, "split-assigner")
	logger.Info("assigned", slog.Int("bin_count", 5), slog.String("split", "train"))

	line := buf.String()
	if !strings.Contains(line, "INFO split-assigner: assigned") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "bin_count=5") || !strings.Contains(line, "split=train") {
		t.Fatalf("missing attrs in line: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)

	logger := slog.New(newPrettyHandler(&buf, lvl))
	logger.Warn("validation", slog.String("warning", "train split too small"))

	if !strings.Contains(buf.String(), `warning="train split too small"`) {
		t.Fatalf("expected quoted attr, got %q", buf.String())
	}
}

func TestPrettyHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)

	handler := newPrettyHandler(&buf, lvl)
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}

	slog.New(handler).Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
