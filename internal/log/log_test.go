package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: slog.LevelDebug, Component: component, Output: &buf}), &buf
}

func TestLoggerTagsComponentOnce(t *testing.T) {
	l, buf := newBufferLogger(ComponentHTTP)
	l.Info("hello")
	l.WithComponent(ComponentWorker).Info("again")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if strings.Count(lines[0], "component=") != 1 || !strings.Contains(lines[0], "component=http") {
		t.Errorf("first line = %q", lines[0])
	}
	if strings.Count(lines[1], "component=") != 1 || !strings.Contains(lines[1], "component=worker") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})
	l.Info("hello", FieldUserID, "alice")
	if !strings.Contains(buf.String(), `"user_id":"alice"`) || !strings.Contains(buf.String(), `"component":"app"`) {
		t.Fatalf("output = %s", buf.String())
	}
}

func TestMiddlewareCarriesTaggedLogger(t *testing.T) {
	l, buf := newBufferLogger(ComponentHTTP)
	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(r.Context(), FromContext(r.Context()).With(FieldRequestID, "req-42"))
		FromContext(ctx).InfoContext(ctx, "inside")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	if !strings.Contains(buf.String(), "request_id=req-42") || !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("output = %s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected logger %+v", l)
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	l, buf := newBufferLogger(ComponentHTTP)
	sl := NewStructuredLogger(l)
	r := httptest.NewRequest(http.MethodGet, "/api/summary?uid=a", nil)

	sl.LogHTTPEnd(context.Background(), r, 404, 3, "1.2.3.4")
	sl.LogHTTPEnd(context.Background(), r, 500, 3, "1.2.3.4")
	sl.LogError(context.Background(), "boom", errors.New("bad"), ErrorTypeInternal, OpSummary, nil)

	out := buf.String()
	for _, want := range []string{"level=WARN", "level=ERROR", "error_type=internal_error", "operation=summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}
