package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLoggerFormatsAndCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger := NewSlogLogger(base).WithField("agent", "a1")
	logger.Info("Agent.handle: seat %d to move", 2)

	out := buf.String()
	if !strings.Contains(out, "Agent.handle: seat 2 to move") {
		t.Fatalf("expected formatted message, got %q", out)
	}
	if !strings.Contains(out, "agent=a1") {
		t.Fatalf("expected agent field, got %q", out)
	}
	if got := logger.Fields()["agent"]; got != "a1" {
		t.Fatalf("expected field a1, got %v", got)
	}
}

func TestSlogLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger := NewSlogLogger(base)
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("expected debug and info to be dropped, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn to be logged, got %q", buf.String())
	}
}

func TestWithFieldsDoesNotLeakIntoParent(t *testing.T) {
	parent := NewSlogLogger(nil)
	child := parent.WithFields(map[string]interface{}{"seat": 1})

	if _, ok := parent.Fields()["seat"]; ok {
		t.Fatal("parent logger should not see child fields")
	}
	if child.Fields()["seat"] != 1 {
		t.Fatalf("expected child field seat=1, got %v", child.Fields())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug {
		t.Fatal("expected debug level")
	}
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Fatal("expected info fallback")
	}
}
