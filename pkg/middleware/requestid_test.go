package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pubsearch/pkg/logger"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seenByHandler string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenByHandler = w.Header().Get("X-Request-ID")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("no request ID on response")
	}
	if len(id) != 16 {
		t.Errorf("generated ID %q, want 16 hex chars", id)
	}
	if seenByHandler != id {
		t.Errorf("handler saw %q, response carries %q", seenByHandler, id)
	}
}

func TestRequestIDHonoursIncomingHeader(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id-42" {
		t.Errorf("response ID = %q, want upstream ID echoed", got)
	}
}

// The ID must reach request-scoped loggers through the context.
func TestRequestIDPropagatesToLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handling")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "ctx-trace-7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), `"request_id":"ctx-trace-7"`) {
		t.Errorf("log line missing request_id: %s", buf.String())
	}
}
