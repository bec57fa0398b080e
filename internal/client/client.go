package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxMessageSize = 1024

	// SendBufferSize is how many outbound messages a client may lag behind
	SendBufferSize = 64
)

// Hub is the part of the broadcast hub a client talks back to
type Hub interface {
	Unregister(client *Client)
}

// Client is one UI connection following zero or more scan sessions.
// An empty session filter follows every session.
type Client struct {
	ID string

	// Send is drained by WritePump. Only Close may close it.
	Send chan models.ServerMessage

	conn        *websocket.Conn
	hub         Hub
	connectedAt time.Time

	filter   models.SubscriptionFilter
	filterMu sync.RWMutex

	sendMu sync.Mutex
	closed bool

	delivered atomic.Int64
	received  atomic.Int64
}

// NewClient creates a client; conn may be nil in tests that never pump
func NewClient(id string, conn *websocket.Conn, hub Hub) *Client {
	return &Client{
		ID:          id,
		Send:        make(chan models.ServerMessage, SendBufferSize),
		conn:        conn,
		hub:         hub,
		connectedAt: time.Now(),
	}
}

func (c *Client) logger() *log.Entry {
	return log.WithFields(log.Fields{"component": "client", "client_id": c.ID})
}

// TrySend queues msg without blocking. It reports false when the buffer is
// full or the client has been closed.
func (c *Client) TrySend(msg models.ServerMessage) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// Close stops further sends and closes Send so WritePump hangs up once the
// queued messages are written. It is safe to call more than once.
func (c *Client) Close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// Closed reports whether Close has been called
func (c *Client) Closed() bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.closed
}

// ReadPump handles control messages from the UI until the connection drops
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg models.ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger().WithError(err).Warn("unexpected close")
			}
			return
		}
		c.received.Add(1)
		c.HandleMessage(msg)
	}
}

// WritePump writes queued messages and keeps the connection alive with
// pings. Closing the connection on ctx.Done also ends ReadPump.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.writeClose()
			return

		case msg, ok := <-c.Send:
			if !ok {
				c.writeClose()
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger().WithError(err).Warn("write failed")
				return
			}
			c.delivered.Add(1)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeClose() {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// SetFilter replaces the sessions the client follows
func (c *Client) SetFilter(filter models.SubscriptionFilter) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()
	c.filter = filter
}

// GetFilter returns the sessions the client follows
func (c *Client) GetFilter() models.SubscriptionFilter {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return c.filter
}

// MatchesSession reports whether the client follows sessionID
func (c *Client) MatchesSession(sessionID string) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()

	if len(c.filter.Sessions) == 0 {
		return true
	}
	for _, id := range c.filter.Sessions {
		if id == sessionID {
			return true
		}
	}
	return false
}

// Status describes the connection for heartbeat replies
func (c *Client) Status() models.ClientStatus {
	return models.ClientStatus{
		ClientID:    c.ID,
		Sessions:    c.GetFilter().Sessions,
		ConnectedAt: c.connectedAt,
		Delivered:   c.delivered.Load(),
		Received:    c.received.Load(),
		Queued:      len(c.Send),
	}
}

// HandleMessage applies one control message from the UI
func (c *Client) HandleMessage(msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeSubscribe:
		filter, err := parseFilter(msg.Payload)
		if err != nil {
			c.reply(models.MessageTypeError, models.ErrorMessage{Code: "invalid_filter", Message: "failed to parse filter"})
			return
		}
		c.SetFilter(filter)
		c.logger().WithField("sessions", filter.Sessions).Info("subscribed")

	case models.MessageTypeUnsubscribe:
		c.SetFilter(models.SubscriptionFilter{})
		c.logger().Info("unsubscribed")

	case models.MessageTypeHeartbeat:
		c.reply(models.MessageTypeHeartbeat, c.Status())

	default:
		c.reply(models.MessageTypeError, models.ErrorMessage{
			Code:    "unknown_message_type",
			Message: fmt.Sprintf("unknown message type: %s", msg.Type),
		})
	}
}

func (c *Client) reply(msgType string, payload interface{}) {
	if !c.TrySend(models.ServerMessage{Type: msgType, Payload: payload, Timestamp: time.Now()}) {
		c.logger().WithField("type", msgType).Debug("reply dropped")
	}
}

// parseFilter round-trips the loosely typed payload into a filter
func parseFilter(payload map[string]interface{}) (models.SubscriptionFilter, error) {
	var filter models.SubscriptionFilter
	raw, err := json.Marshal(payload)
	if err != nil {
		return filter, err
	}
	err = json.Unmarshal(raw, &filter)
	return filter, err
}
