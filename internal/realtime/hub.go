// Package realtime is the WebSocket layer: the hub owns the connection set
// and fan-out, clients run the read/write pumps, and the router maps named
// client actions onto the session.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Publisher mirrors outbound broadcasts to an external channel (e.g. Redis)
// so dashboards outside the classroom can follow along. Optional.
type Publisher interface {
	PublishEvent(event string, payload []byte) error
}

// Hub maintains the set of connected clients and broadcasts messages.
// Delivery is a non-blocking send per client: a full send buffer means the
// client is skipped, never awaited. Mirror publishes go through a buffered
// queue drained off the broadcast path, so Redis latency never reaches the
// session lock.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	logger    *zap.Logger
	publisher Publisher
	pubQueue  chan WSMessage
}

// NewHub creates a hub. publisher may be nil.
func NewHub(logger *zap.Logger, publisher Publisher) *Hub {
	h := &Hub{
		clients:   make(map[string]*Client),
		logger:    logger,
		publisher: publisher,
	}
	if publisher != nil {
		h.pubQueue = make(chan WSMessage, 1024)
		go h.drainPublishQueue()
	}
	return h
}

func (h *Hub) drainPublishQueue() {
	for msg := range h.pubQueue {
		if err := h.publisher.PublishEvent(msg.Event, msg.Data); err != nil {
			h.logger.Warn("mirror event", zap.String("event", msg.Event), zap.Error(err))
		}
	}
}

// Register adds a client to the connection set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.Int("connections", count))
}

// Unregister removes a client from the connection set.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID), zap.Int("connections", count))
}

// Broadcast sends an event to every connected client and mirrors it to the
// publisher when one is configured. A failed or slow client never blocks
// delivery to the others.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal broadcast", zap.String("event", event), zap.Error(err))
		return
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
	h.mu.RUnlock()

	if h.pubQueue != nil {
		select {
		case h.pubQueue <- msg:
		default:
			h.logger.Warn("mirror queue full, dropping event", zap.String("event", event))
		}
	}
}

// SendTo sends an event to a single client. Unknown clients are a no-op.
func (h *Hub) SendTo(connID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal unicast", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case c.send <- WSMessage{Event: event, Data: data}:
	default:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
