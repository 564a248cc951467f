package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBufLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSamplingAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	h := New(newBufLogger(&buf), Options{DropEvery: 2, Redact: HashKey})

	h.EntryDropped("company-info", "expired") // sampled out
	h.EntryDropped("company-info", "expired") // logged
	out := buf.String()
	if strings.Count(out, "prioritycache.entry_dropped") != 1 {
		t.Fatalf("expected exactly one sampled log line, got:\n%s", out)
	}
	if strings.Contains(out, "company-info") || !strings.Contains(out, HashKey("company-info")) {
		t.Fatalf("key should be redacted, got:\n%s", out)
	}
}

func TestWarnsOnFailures(t *testing.T) {
	var buf bytes.Buffer
	h := New(newBufLogger(&buf), Options{})

	h.PersistFailed("save", errors.New("quota exceeded"))
	h.RefreshFailed("hero", errors.New("backend down"))
	out := buf.String()
	for _, want := range []string{"persist_failed", "quota exceeded", "refresh_failed", "key=hero"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	h := New(nil, Options{})
	h.EntryDropped("k", "corrupt")
	h.PersistFailed("load", errors.New("x"))
	h.BackgroundWrite("k")
	h.RefreshFailed("k", errors.New("x"))
}
