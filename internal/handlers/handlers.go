package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/db"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/hub"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/session"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// HealthCheck reports whether a backing service is reachable
type HealthCheck func(ctx context.Context) error

// MetricsSource contributes a metrics section
type MetricsSource func() map[string]interface{}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	ctx      context.Context
	sessions *session.Manager
	hub      *hub.Hub
	records  db.RecordStore // nil when no database is configured

	checks  map[string]HealthCheck
	metrics map[string]MetricsSource
	now     func() time.Time
}

// NewHandler creates a new handler with dependencies. ctx bounds the
// lifetime of WebSocket pumps.
func NewHandler(ctx context.Context, sessions *session.Manager, h *hub.Hub, records db.RecordStore) *Handler {
	handler := &Handler{
		ctx:      ctx,
		sessions: sessions,
		hub:      h,
		records:  records,
		checks:   make(map[string]HealthCheck),
		metrics:  make(map[string]MetricsSource),
		now:      time.Now,
	}
	if records != nil {
		handler.checks["postgres"] = records.Ping
	}
	return handler
}

// AddHealthCheck registers a dependency probed by /health
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// AddMetrics registers an extra section for /metrics
func (h *Handler) AddMetrics(name string, source MetricsSource) {
	h.metrics[name] = source
}

// HandleHealth returns service health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			log.WithFields(log.Fields{"component": "handlers", "dependency": name}).WithError(err).Warn("health check failed")
			deps[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "healthy"
	}

	health := map[string]interface{}{
		"status":          "healthy",
		"service":         "ticket-scanner",
		"timestamp":       h.now().UTC(),
		"active_sessions": h.sessions.Count(),
		"active_clients":  h.hub.GetClientCount(),
		"dependencies":    deps,
	}
	if status != http.StatusOK {
		health["status"] = "degraded"
	}

	respondJSON(w, status, health)
}

// HandleMetrics returns hub and session metrics
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"hub":      h.hub.GetMetrics(),
		"sessions": h.sessions.GetMetrics(),
	}
	for name, source := range h.metrics {
		metrics[name] = source()
	}

	respondJSON(w, http.StatusOK, metrics)
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithField("component", "handlers").WithError(err).Error("error encoding response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}

	if err != nil {
		log.WithFields(log.Fields{"component": "handlers", "status": status}).WithError(err).Warn(message)
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		log.WithField("component", "handlers").WithError(err).Error("error encoding error response")
	}
}
