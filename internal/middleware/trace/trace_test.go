package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payslip/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := log.New(log.Config{Level: slog.LevelInfo, Format: log.FormatJSON, Output: &buf, Component: log.ComponentHTTP})

	var seenID string
	var observed int
	m := NewMiddleware(func(*http.Request) string { return "10.0.0.1" }, func(method string, status int, _ time.Duration) {
		if method != http.MethodPost {
			t.Errorf("method = %s", method)
		}
		observed = status
	})

	h := log.Middleware(base)(m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/slips/x/earning", nil))

	if !strings.HasPrefix(seenID, "req_") || rec.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("request id %q not propagated (header %q)", seenID, rec.Header().Get(RequestIDHeader))
	}
	if observed != http.StatusTeapot {
		t.Fatalf("observed status %d, want first written status", observed)
	}
	out := buf.String()
	if !strings.Contains(out, `"request_id":"`+seenID+`"`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Fatalf("completion log missing fields: %s", out)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if id := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Fatalf("id = %q", id)
	}
}
