package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"INFO":    Info,
		"":        Info,
		"warning": Warn,
		"error":   Error,
		"nope":    Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_JSON_IncludesBaseAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "reminders", Output: &buf})

	l.With(map[string]any{"medication_id": "m-1"}).Info("armed", map[string]any{
		"slot":  0,
		"error": errors.New("boom"),
		"  ":    "skipped",
	})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry["level"] != "info" || entry["message"] != "armed" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if entry["app"] != "reminders" || entry["medication_id"] != "m-1" {
		t.Fatalf("missing base fields: %#v", entry)
	}
	if entry["error"] != "boom" {
		t.Fatalf("expected error as text, got %#v", entry["error"])
	}
	if _, ok := entry["  "]; ok {
		t.Fatalf("blank keys must be dropped")
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatText, Output: &buf})

	l.Debug("dbg", nil)
	l.Info("inf", nil)
	l.Warn("wrn", map[string]any{"k": "v"})

	out := buf.String()
	if strings.Contains(out, "dbg") || strings.Contains(out, "inf") {
		t.Fatalf("unexpected low level output: %s", out)
	}
	if !strings.Contains(out, "wrn") || !strings.Contains(out, "k=v") {
		t.Fatalf("expected warn line with field, got: %s", out)
	}
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.With(map[string]any{"a": 1}).Error("x", nil)
}
