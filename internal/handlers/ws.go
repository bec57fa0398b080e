package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/client"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Scanning devices and the UI connect from the local network
		return true
	},
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("component", "handlers").WithError(err).Warn("websocket upgrade error")
		return
	}

	clientID := uuid.New().String()
	c := client.NewClient(clientID, conn, h.hub)

	// Follow a single session straight away when asked to
	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		c.SetFilter(models.SubscriptionFilter{Sessions: []string{sessionID}})
	}

	h.hub.Register(c)

	// Pumps outlive the request; the handler context ends them
	go c.WritePump(h.ctx)
	go c.ReadPump()

	log.WithFields(log.Fields{"component": "handlers", "client_id": clientID}).Info("websocket connection established")
}
