package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/middleware"
)

func TestLogger(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	log.SetLevel(log.DebugLevel)
	defer log.SetLevel(log.InfoLevel)

	tests := []struct {
		name   string
		status int
		level  log.Level
	}{
		{name: "ok", status: http.StatusOK, level: log.DebugLevel},
		{name: "client error", status: http.StatusNotFound, level: log.WarnLevel},
		{name: "server error", status: http.StatusServiceUnavailable, level: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			handler := middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/records", nil))

			entry := hook.LastEntry()
			if entry == nil {
				t.Fatal("Expected a log entry")
			}
			if entry.Level != tt.level {
				t.Errorf("Expected level %v, got %v", tt.level, entry.Level)
			}
			if entry.Data["status"] != tt.status {
				t.Errorf("Expected status %d, got %v", tt.status, entry.Data["status"])
			}
		})
	}
}
