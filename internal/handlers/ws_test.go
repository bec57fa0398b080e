package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/hub"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/session"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

func TestWebSocket_ReceivesSessionEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.NewHub()
	go h.Run(ctx)
	m := session.NewManager(session.WithSink(h))
	s := m.Create()

	server := httptest.NewServer(handlers.NewRouter(handlers.NewHandler(ctx, m, h, nil), []string{"*"}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + s.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// wait for registration before producing events
	deadline := time.Now().Add(2 * time.Second)
	for h.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for client registration")
		}
		time.Sleep(10 * time.Millisecond)
	}

	body, _ := json.Marshal(map[string]string{"data": winTicket("000042")})
	resp, err := http.Post(server.URL+"/api/v1/sessions/"+s.ID+"/scan", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to post frame: %v", err)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var types []string
	for len(types) < 2 {
		var msg struct {
			Type      string `json:"type"`
			SessionID string `json:"session_id"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		if msg.SessionID != s.ID {
			t.Errorf("Expected session %s, got %s", s.ID, msg.SessionID)
		}
		types = append(types, msg.Type)
	}

	if types[0] != models.MessageTypeScanResult || types[1] != models.MessageTypeHaptic {
		t.Errorf("Expected scan_result then haptic, got %v", types)
	}
}
