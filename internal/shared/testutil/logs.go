// Package testutil holds fixtures and log capture shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call with its attributes flattened.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogCapture is a slog.Handler that keeps every record in memory.
type LogCapture struct {
	store *logStore
	attrs []slog.Attr
	group string
}

// NewTestLogger returns a logger writing into a fresh LogCapture.
func NewTestLogger() (*slog.Logger, *LogCapture) {
	h := &LogCapture{store: &logStore{}}
	return slog.New(h), h
}

func (h *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (h *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.key(a.Key)] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = append(h.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

func (h *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return &next
}

func (h *LogCapture) WithGroup(name string) slog.Handler {
	next := *h
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}

func (h *LogCapture) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// Records returns a copy of everything captured so far.
func (h *LogCapture) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]LogRecord(nil), h.store.records...)
}

// Find returns the first record whose message contains msg.
func (h *LogCapture) Find(msg string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, msg) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// AssertLogged fails the test unless a record at level contains msg.
func AssertLogged(t *testing.T, h *LogCapture, level slog.Level, msg string) LogRecord {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, msg) {
			return r
		}
	}
	t.Errorf("no %s log containing %q", level, msg)
	for _, r := range h.Records() {
		t.Logf("  [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
	return LogRecord{}
}
