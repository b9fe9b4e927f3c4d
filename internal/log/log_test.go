package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerComponentAndEvent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf})
	if l.Component() != ComponentApp {
		t.Fatalf("default component = %q", l.Component())
	}

	ctx := context.Background()
	l.WithComponent(ComponentBudget).Event(ctx, "Budget saved", nil, NewFields().WithBudget("2025-03", "personal"))
	l.Event(ctx, "Refresh failed", errors.New("boom"), NewFields().WithOperation(OpRefresh))

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	ok := lines[0]
	if ok["level"] != "INFO" || ok[FieldComponent] != ComponentBudget || ok[FieldMonth] != "2025-03" {
		t.Errorf("success event = %v", ok)
	}
	failed := lines[1]
	if failed["level"] != "ERROR" || failed[FieldError] != "boom" || failed[FieldErrorType] != ErrorTypeInternal {
		t.Errorf("error event = %v", failed)
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != ComponentApp {
		t.Fatalf("fallback logger = %+v", l)
	}
	want := New(Config{Component: ComponentWorker})
	if got := FromContext(NewContext(context.Background(), want)); got != want {
		t.Fatal("logger not taken from context")
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})
	h := Middleware(base,
		func(*http.Request) string { return "req-1" },
		func(*http.Request) string { return "10.0.0.1" },
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()).Component() != ComponentHTTP {
			t.Error("handler did not get the request logger")
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/goals?context=personal", nil))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("lines = %d", len(lines))
	}
	got := lines[0]
	if got["level"] != "WARN" || got[FieldRequestID] != "req-1" || got[FieldClientIP] != "10.0.0.1" {
		t.Errorf("request log = %v", got)
	}
	if got[FieldStatusCode] != float64(404) || got[FieldSuccess] != false || got[FieldQuery] != "context=personal" {
		t.Errorf("request fields = %v", got)
	}
}
