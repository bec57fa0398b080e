package models

import "time"

// ScanReason says why a frame was or was not accepted
type ScanReason string

const (
	ScanAccepted      ScanReason = "accepted"
	ScanNotTicketCode ScanReason = "not_ticket_code"
	ScanDebounced     ScanReason = "debounced"
	ScanDuplicate     ScanReason = "duplicate_ticket"
	ScanIncomplete    ScanReason = "incomplete"
)

// Message shown when a decode does not produce a savable ticket
const IncompleteMessage = "QRコードを正しく読み取れませんでした。もう一度お試しください。"

// ScanFrame is one raw string delivered by a scanner. The session id is
// taken from the URL on the HTTP path and from the message on the stream.
type ScanFrame struct {
	SessionID string `json:"session_id,omitempty"`
	Data      string `json:"data"`
}

// ScanResult is the outcome of feeding one frame to a session
type ScanResult struct {
	SessionID string          `json:"session_id"`
	Accepted  bool            `json:"accepted"`
	Reason    ScanReason      `json:"reason"`
	Message   string          `json:"message,omitempty"`
	Ticket    *DecodedTicket  `json:"ticket,omitempty"`
	Draft     *BetRecordInput `json:"draft,omitempty"`
	ScannedAt time.Time       `json:"scanned_at"`
}

// HapticKind is the device feedback requested on a scan event
type HapticKind string

const (
	HapticConfirm HapticKind = "confirm"
)

// SessionState is a point-in-time view of a scan session
type SessionState struct {
	ID             string       `json:"id"`
	CreatedAt      time.Time    `json:"created_at"`
	LastActivityAt time.Time    `json:"last_activity_at"`
	LastAcceptedAt *time.Time   `json:"last_accepted_at"`
	Error          string       `json:"error,omitempty"`
	SeenSerials    int          `json:"seen_serials"`
	LastResult     *ScanResult  `json:"last_result,omitempty"`
	Stats          SessionStats `json:"stats"`
}

// SessionStats counts frame outcomes for one session
type SessionStats struct {
	Frames     int64 `json:"frames"`
	Filtered   int64 `json:"filtered"`
	Debounced  int64 `json:"debounced"`
	Duplicates int64 `json:"duplicates"`
	Incomplete int64 `json:"incomplete"`
	Accepted   int64 `json:"accepted"`
}
