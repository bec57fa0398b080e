package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/db"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// CreateRecord saves a bet record, typically a confirmed scan draft
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	if !h.recordsAvailable(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var in models.BetRecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if in.PurchasedAt.IsZero() {
		in.PurchasedAt = h.now()
	}

	if problems := in.Validate(); len(problems) > 0 {
		respondError(w, http.StatusBadRequest, strings.Join(problems, "; "), nil)
		return
	}

	record, err := h.records.CreateRecord(ctx, in)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create record", err)
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

const maxListLimit = 500

// ListRecords retrieves records newest first
// Query params: track, since, until (RFC3339), limit, offset
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	if !h.recordsAvailable(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filters := models.RecordFilters{
		Limit:  parseIntParam(r, "limit", 50),
		Offset: parseIntParam(r, "offset", 0),
	}

	if trackStr := r.URL.Query().Get("track"); trackStr != "" {
		track, ok := models.ParseTrack(trackStr)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown track", nil)
			return
		}
		filters.Track = &track
	}

	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		if t, err := time.Parse(time.RFC3339, sinceStr); err == nil {
			filters.Since = &t
		}
	}

	if untilStr := r.URL.Query().Get("until"); untilStr != "" {
		if t, err := time.Parse(time.RFC3339, untilStr); err == nil {
			filters.Until = &t
		}
	}

	// Clamp paging so the query is always bounded
	switch {
	case filters.Limit < 1:
		filters.Limit = 1
	case filters.Limit > maxListLimit:
		filters.Limit = maxListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	records, err := h.records.ListRecords(ctx, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve records", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}

// GetRecord retrieves a single record
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	if !h.recordsAvailable(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, ok := recordID(w, r)
	if !ok {
		return
	}

	record, err := h.records.GetRecord(ctx, id)
	if errors.Is(err, db.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "record not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve record", err)
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// DeleteRecord removes a record
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if !h.recordsAvailable(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, ok := recordID(w, r)
	if !ok {
		return
	}

	err := h.records.DeleteRecord(ctx, id)
	if errors.Is(err, db.ErrRecordNotFound) {
		respondError(w, http.StatusNotFound, "record not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete record", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetRecordSummary returns investment, return, profit and recovery rate
// Query params: period (all, today, month)
func (h *Handler) GetRecordSummary(w http.ResponseWriter, r *http.Request) {
	if !h.recordsAvailable(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	period := strings.ToLower(r.URL.Query().Get("period"))
	if period == "" {
		period = models.PeriodAll
	}
	if !models.ValidPeriod(period) {
		respondError(w, http.StatusBadRequest, "period must be all, today or month", nil)
		return
	}

	summary, err := h.records.Summary(ctx, period, models.PeriodFilters(period, h.now()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to summarize records", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) recordsAvailable(w http.ResponseWriter) bool {
	if h.records == nil {
		respondError(w, http.StatusServiceUnavailable, "record store not configured", nil)
		return false
	}
	return true
}

func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid record id", nil)
		return 0, false
	}
	return id, true
}
