package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Logger logs one line per request with status, size and latency
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			entry := log.WithFields(log.Fields{
				"component":  "http",
				"request_id": chimiddleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"remote":     r.RemoteAddr,
			})

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				entry.Error("request failed")
			case ww.Status() >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Debug("request served")
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
