package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/middleware"
)

// NewRouter wires every route behind the standard middleware stack
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	r.Get("/health", h.HandleHealth)
	r.Get("/metrics", h.HandleMetrics)
	r.Get("/ws", h.HandleWebSocket)

	// API v1; the timeout stays off /ws so upgraded connections live on
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		// Scan sessions
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions/{id}", h.GetSession)
		r.Delete("/sessions/{id}", h.EndSession)
		r.Post("/sessions/{id}/scan", h.ScanFrame)
		r.Post("/sessions/{id}/reset", h.ResetSession)
		r.Post("/sessions/{id}/clear-error", h.ClearSessionError)

		// Stateless decode
		r.Post("/decode", h.Decode)

		// Bet records
		r.Post("/records", h.CreateRecord)
		r.Get("/records", h.ListRecords)
		r.Get("/records/summary", h.GetRecordSummary)
		r.Get("/records/{id}", h.GetRecord)
		r.Delete("/records/{id}", h.DeleteRecord)
	})

	return r
}
