package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/paisa/paisa/internal/config"
)

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"password dropped", "postgres://paisa:s3cret@db:5432/paisa", "postgres://paisa@db:5432/paisa"},
		{"no credentials", "redis://localhost:6379/0", "redis://localhost:6379/0"},
		{"unparseable", "postgres://%zz", "[redacted]"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := redactURL(tt.in); got != tt.want {
				t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	dsn := "postgres://paisa:s3cret@db:5432/paisa"
	err := errors.New("dial " + dsn + ": refused (password=hunter2)")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") || strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked: %s", got)
	}
	if !strings.Contains(got, "password=redacted") {
		t.Errorf("expected password pattern to be masked: %s", got)
	}
	if sanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty string")
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	if parseLogLevel("debug").String() != "DEBUG" {
		t.Error("debug not parsed")
	}
	if parseLogLevel("bogus").String() != "INFO" {
		t.Error("unknown level should default to info")
	}
}

func TestNewEventSink_None(t *testing.T) {
	t.Parallel()

	sink, err := newEventSink(&config.Config{EventsBackend: config.EventsNone}, nil)
	if err != nil {
		t.Fatalf("newEventSink: %v", err)
	}
	if sink != nil {
		t.Errorf("expected nil sink for backend none, got %T", sink)
	}
}
