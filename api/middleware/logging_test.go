// ABOUTME: Tests for the request logging middleware
// ABOUTME: Verifies request IDs, log fields, and server error logging

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type recordingLogger struct {
	mu     sync.Mutex
	infos  []map[string]interface{}
	errors []map[string]interface{}
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fields)
}
func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fields)
}

func TestRequestLogging_SetsRequestIDAndLogs(t *testing.T) {
	logger := &recordingLogger{}
	handler := RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/news", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry X-Request-ID")
	}
	if len(logger.infos) != 1 {
		t.Fatalf("expected 1 info log, got %d", len(logger.infos))
	}
	fields := logger.infos[0]
	if fields["path"] != "/api/news" {
		t.Errorf("unexpected path field: %v", fields["path"])
	}
	if fields["status"] != http.StatusOK {
		t.Errorf("unexpected status field: %v", fields["status"])
	}
}

func TestRequestLogging_ServerErrorLogged(t *testing.T) {
	logger := &recordingLogger{}
	handler := RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/news", nil))

	if len(logger.errors) != 1 {
		t.Fatalf("expected server error to be logged, got %d entries", len(logger.errors))
	}
}

func TestResponseWriter_DoubleWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("first status should win, got %d", rw.statusCode)
	}
}
