package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/session"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// CreateSession starts a scan session with an empty serial set
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	respondJSON(w, http.StatusCreated, s.Snapshot())
}

// GetSession returns the session's state, stats and last result
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// EndSession discards a session and its serial set
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.End(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ScanFrame delivers one raw frame to a session. Rejections are results,
// not errors, so every processed frame answers 200.
func (h *Handler) ScanFrame(w http.ResponseWriter, r *http.Request) {
	var frame models.ScanFrame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.sessions.Scan(chi.URLParam(r, "id"), frame.Data)
	if err == session.ErrNotFound {
		respondError(w, http.StatusNotFound, "session not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ResetSession zeroes the debounce timer; seen serials are kept
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	s.Reset()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// ClearSessionError drops an error result from the session
func (h *Handler) ClearSessionError(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	s.ClearError()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "session not found", nil)
	}
	return s, ok
}
