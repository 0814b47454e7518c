package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		Component: ComponentPlanner,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	l.Info("schedule computed", FieldMortgageID, 7)

	out := buf.String()
	if !strings.Contains(out, "component=planner") {
		t.Errorf("expected component field, got %q", out)
	}
	if !strings.Contains(out, "mortgage_id=7") {
		t.Errorf("expected mortgage_id field, got %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	l.WithComponent(ComponentCache).Warn("eviction")

	if !strings.Contains(buf.String(), "component=cache") {
		t.Errorf("expected cache component, got %q", buf.String())
	}
}
