package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/colorclaim/internal/metrics"
	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/services/gateway"
)

// Mirror receives a copy of every group broadcast
type Mirror interface {
	Publish(group model.RoomName, event model.EventName, data []byte)
	// End is called once a group's room no longer exists
	End(group model.RoomName)
}

// Hub tracks connected clients and their groups and delivers frames to them.
// Delivery never blocks: a client whose buffer is full misses the frame.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
	groups  map[model.RoomName]map[model.PlayerID]struct{}

	mirror  Mirror
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ gateway.Transport = (*Hub)(nil)

// NewHub creates an empty Hub. mirror and m may be nil.
func NewHub(mirror Mirror, m *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.PlayerID]*Client),
		groups:  make(map[model.RoomName]map[model.PlayerID]struct{}),
		mirror:  mirror,
		metrics: m,
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Register adds a client
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client registered",
		slog.String("player_id", string(c.id)),
		slog.Int("total_clients", count))
}

// Unregister removes a client from the hub and all groups and closes its send channel
func (h *Hub) Unregister(id model.PlayerID) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, id)
	for name, members := range h.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, name)
		}
	}
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client unregistered",
		slog.String("player_id", string(id)),
		slog.Duration("connection_duration", time.Since(c.connectedAt)),
		slog.Int("total_clients", count))
}

// Send delivers an event to one client
func (h *Hub) Send(to model.PlayerID, event model.EventName, payload any) {
	_, frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[to]; ok {
		h.deliver(c, event, frame)
	}
}

// Broadcast delivers an event to every member of a group except one
func (h *Hub) Broadcast(group model.RoomName, event model.EventName, payload any, except model.PlayerID) {
	data, frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	for id := range h.groups[group] {
		if id == except {
			continue
		}
		if c, ok := h.clients[id]; ok {
			h.deliver(c, event, frame)
		}
	}
	h.mu.RUnlock()

	if h.mirror != nil {
		h.mirror.Publish(group, event, data)
	}
}

// Join adds a client to a group
func (h *Hub) Join(id model.PlayerID, group model.RoomName) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; !ok {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[model.PlayerID]struct{})
	}
	h.groups[group][id] = struct{}{}
}

// Leave removes a client from a group
func (h *Hub) Leave(id model.PlayerID, group model.RoomName) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Disband forgets a group whose room was destroyed and ends its mirror feed
func (h *Hub) Disband(group model.RoomName) {
	h.mu.Lock()
	delete(h.groups, group)
	h.mu.Unlock()

	if h.mirror != nil {
		h.mirror.End(group)
	}
}

// CloseAll closes every client's connection. Each session then ends through its
// handler's normal disconnect path.
func (h *Hub) CloseAll(reason string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close(reason)
	}
	if len(clients) > 0 {
		h.logger.Info("websocket clients closed", slog.Int("count", len(clients)), slog.String("reason", reason))
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GroupSize returns the number of clients in a group
func (h *Hub) GroupSize(group model.RoomName) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// deliver must be called with at least the read lock held
func (h *Hub) deliver(c *Client, event model.EventName, frame []byte) {
	select {
	case c.send <- frame:
	default:
		h.metrics.ObserveOutboundDrop()
		h.logger.Warn("websocket message dropped - client buffer full",
			slog.String("player_id", string(c.id)),
			slog.String("event", string(event)))
	}
}

func (h *Hub) encode(event model.EventName, payload any) (json.RawMessage, []byte, bool) {
	data, frame, err := encode(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("event", string(event)), slog.Any("error", err))
		return nil, nil, false
	}
	return data, frame, true
}
