package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/ticketcode"
)

// Decode decodes a digit string without touching any session
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	var frame models.ScanFrame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ticket, err := ticketcode.Decode(frame.Data)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, ticketcode.ErrNonNumericInput) && !errors.Is(err, ticketcode.ErrTooShort) {
			status = http.StatusInternalServerError
		}
		respondError(w, status, err.Error(), nil)
		return
	}

	resp := models.DecodeResponse{Ticket: ticket, Valid: true}
	if err := ticketcode.Validate(ticket); err != nil {
		resp.Valid = false
		resp.Problems = err.Error()
	} else {
		resp.Draft = models.DraftFromTicket(ticket, h.now())
	}

	respondJSON(w, http.StatusOK, resp)
}
