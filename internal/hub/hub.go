package hub

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/client"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// Hub maintains the set of UI clients and pushes scan events to the ones
// following the event's session. It is a session.Sink.
type Hub struct {
	// Registered clients
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	// Outbound events from sessions
	broadcast chan models.ServerMessage

	// Register requests from clients
	register chan *client.Client

	// Unregister requests from clients
	unregister chan *client.Client

	// Metrics
	totalConnections int64
	totalMessages    int64
	droppedMessages  int64
	metricsMu        sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan models.ServerMessage, 256),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	log.WithField("component", "hub").Info("hub started")

	go h.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *client.Client) {
	h.register <- c
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	h.unregister <- c
}

// Deliver queues a scan result for the session's followers
func (h *Hub) Deliver(result models.ScanResult) {
	h.enqueue(models.ServerMessage{
		Type:      models.MessageTypeScanResult,
		SessionID: result.SessionID,
		Payload:   result,
		Timestamp: time.Now(),
	})
}

// Confirm queues the haptic confirmation that accompanies an acceptance
func (h *Hub) Confirm(sessionID string) {
	h.enqueue(models.ServerMessage{
		Type:      models.MessageTypeHaptic,
		SessionID: sessionID,
		Payload:   models.HapticEvent{Kind: models.HapticConfirm},
		Timestamp: time.Now(),
	})
}

func (h *Hub) enqueue(msg models.ServerMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.metricsMu.Lock()
		h.droppedMessages++
		h.metricsMu.Unlock()
		log.WithFields(log.Fields{
			"component":  "hub",
			"session_id": msg.SessionID,
			"type":       msg.Type,
		}).Warn("broadcast buffer full, dropping message")
	}
}

// registerClient adds a client to the active clients map
func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	h.incrementTotalConnections()

	log.WithFields(log.Fields{"component": "hub", "client_id": c.ID, "total": len(h.clients)}).Info("client connected")
}

// unregisterClient removes a client from the active clients map
func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.Close()
		log.WithFields(log.Fields{"component": "hub", "client_id": c.ID, "total": len(h.clients)}).Info("client disconnected")
	}
}

// broadcastMessage sends a message to every client following its session
func (h *Hub) broadcastMessage(msg models.ServerMessage) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	sent := 0
	for _, c := range clients {
		if !c.MatchesSession(msg.SessionID) {
			continue
		}

		if c.TrySend(msg) {
			sent++
		} else {
			// too slow to keep up, disconnect
			log.WithFields(log.Fields{"component": "hub", "client_id": c.ID}).Warn("client buffer full, disconnecting")
			go h.Unregister(c)
		}
	}

	if sent > 0 {
		h.incrementTotalMessages()
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.clientsMu.RLock()
	activeClients := len(h.clients)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	totalConnections := h.totalConnections
	totalMessages := h.totalMessages
	dropped := h.droppedMessages
	h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     activeClients,
		"total_connections":  totalConnections,
		"total_messages":     totalMessages,
		"dropped_messages":   dropped,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// shutdown closes all client connections
func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	log.WithFields(log.Fields{"component": "hub", "active_clients": len(h.clients)}).Info("shutting down hub")

	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}

// reportMetrics periodically reports hub metrics
func (h *Hub) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.WithFields(log.Fields(h.GetMetrics())).WithField("component", "hub").Debug("hub metrics")
		}
	}
}

func (h *Hub) incrementTotalConnections() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalConnections++
}

func (h *Hub) incrementTotalMessages() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalMessages++
}
