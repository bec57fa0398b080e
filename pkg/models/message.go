package models

import "time"

// Message types for WebSocket communication
const (
	MessageTypeScanResult  = "scan_result"
	MessageTypeHaptic      = "haptic"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// HapticEvent asks the device holding the session to vibrate
type HapticEvent struct {
	Kind HapticKind `json:"kind"`
}

// SubscriptionFilter represents client subscription preferences
type SubscriptionFilter struct {
	Sessions []string `json:"sessions,omitempty"` // Filter by session IDs
}

// ClientStatus is the heartbeat reply: what a connection follows and how
// far behind it is
type ClientStatus struct {
	ClientID    string    `json:"client_id"`
	Sessions    []string  `json:"sessions"`
	ConnectedAt time.Time `json:"connected_at"`
	Delivered   int64     `json:"delivered"`
	Received    int64     `json:"received"`
	Queued      int       `json:"queued"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DecodeResponse is the result of a stateless decode
type DecodeResponse struct {
	Ticket   *DecodedTicket  `json:"ticket"`
	Valid    bool            `json:"valid"`
	Problems string          `json:"problems,omitempty"`
	Draft    *BetRecordInput `json:"draft,omitempty"`
}
