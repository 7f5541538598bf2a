package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type recordedStatus struct {
	statuses []int
}

func (r *recordedStatus) Record(status int, _ time.Duration) {
	r.statuses = append(r.statuses, status)
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	observer := &recordedStatus{}

	handler := Logger(logger, observer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	req := httptest.NewRequest(http.MethodPost, "/leave/requests/1/approve", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(observer.statuses) != 1 || observer.statuses[0] != http.StatusConflict {
		t.Fatalf("unexpected statuses: %v", observer.statuses)
	}
	if !strings.Contains(buf.String(), `"status":409`) {
		t.Fatalf("expected status in log line, got %s", buf.String())
	}
}
