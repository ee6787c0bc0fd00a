package sse

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/colorclaim/internal/dependencies/clock"
	"github.com/mcoot/colorclaim/internal/model"
)

const hubBufferSize = 256

// replayed events are remembered per room and sent to spectators who arrive late,
// so a new stream starts with the current countdown and, once scored, the verdict
var replayed = map[model.EventName]bool{
	model.EventUpdateTime: true,
	model.EventResults:    true,
}

type outbound struct {
	frame []byte
	// final closes every stream once the frame is delivered
	final bool
}

// Hub fans one room's broadcasts out to its spectators. Membership and delivery
// happen on the goroutine running Run.
type Hub struct {
	room    model.RoomName
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// replay frames are queued to each newly registered client, oldest first
	replay [][]byte

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a hub for a room. replay frames are sent to every client on registration.
func NewHub(room model.RoomName, logger *slog.Logger, replay ...[]byte) *Hub {
	return &Hub{
		room:       room,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("room", string(room))),
		replay:     replay,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, hubBufferSize),
		done:       make(chan struct{}),
	}
}

// Run delivers until the hub is closed or a final frame has gone out
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.deliver(msg.frame)
			if msg.final {
				h.Close()
				h.disconnectAll()
				return
			}

		case <-h.done:
			h.disconnectAll()
			return
		}
	}
}

func (h *Hub) add(client *Client) {
	for _, frame := range h.replay {
		client.send <- frame
	}

	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("spectator joined",
		slog.String("spectator_id", client.id),
		slog.Int("spectators", n))
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if !h.clients[client] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("spectator left",
		slog.String("spectator_id", client.id),
		slog.Duration("watched_for", time.Since(client.connectedAt)),
		slog.Int("spectators", n))
}

func (h *Hub) deliver(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for client := range h.clients {
		select {
		case client.send <- frame:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("spectator frames dropped, client buffer full", slog.Int("dropped", dropped))
	}
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	n := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()
	h.logger.Debug("spectator hub stopped", slog.Int("disconnected", n))
}

// Register adds a client to the hub. It reports false if the hub has been closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a preformatted frame for every client. The frame is dropped if
// the hub is backed up.
func (h *Hub) Broadcast(frame []byte) {
	h.enqueue(outbound{frame: frame})
}

// BroadcastEvent queues a named event
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Finish queues a last event; once it is delivered every stream is closed
func (h *Hub) Finish(eventName, data string) {
	msg := outbound{frame: formatSSEMessage(eventName, data), final: true}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) enqueue(msg outbound) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("spectator broadcast dropped, hub buffer full")
	}
}

// Close shuts down the hub. It is safe to call more than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage builds one event frame. Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits on \n, dropping \r
func splitLines(s string) []string {
	var lines []string
	var current strings.Builder
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current.String())
			current.Reset()
		} else if r != '\r' {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// roomReplay is the latest replayed frame per event for one room
type roomReplay struct {
	frames map[model.EventName][]byte
	// touched is set by Publish and cleared by the janitor; rooms whose timer stopped
	// without closing the room normally are forgotten after one idle interval
	touched bool
}

// HubManager owns the spectator hubs of every room. Hubs are created when the first
// spectator arrives; Publish never creates one.
type HubManager struct {
	hubs   map[model.RoomName]*Hub
	latest map[model.RoomName]*roomReplay
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomName]*Hub),
		latest: make(map[model.RoomName]*roomReplay),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a room, starting one seeded with the room's
// replay frames if needed
func (m *HubManager) GetOrCreateHub(room model.RoomName) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[room]; ok {
		return hub
	}

	var replay [][]byte
	if r := m.latest[room]; r != nil {
		// countdown before verdict
		for _, event := range []model.EventName{model.EventUpdateTime, model.EventResults} {
			if frame, ok := r.frames[event]; ok {
				replay = append(replay, frame)
			}
		}
	}

	hub := NewHub(room, m.logger, replay...)
	m.hubs[room] = hub
	go hub.Run()
	return hub
}

// Attach registers client with the room's hub and returns that hub
func (m *HubManager) Attach(room model.RoomName, client *Client) (*Hub, bool) {
	return m.attach(m.GetOrCreateHub(room), room, client)
}

// attach retries once on a fresh hub when hub was closed by the janitor, or by the
// room ending, between lookup and registration
func (m *HubManager) attach(hub *Hub, room model.RoomName, client *Client) (*Hub, bool) {
	if hub.Register(client) {
		return hub, true
	}
	hub = m.GetOrCreateHub(room)
	if hub.Register(client) {
		return hub, true
	}
	return nil, false
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(room model.RoomName) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[room]
}

// Publish mirrors a room broadcast to the room's spectators. forceMoveToLobby ends the
// room: its hub delivers that event last, closes every stream and is forgotten.
func (m *HubManager) Publish(room model.RoomName, event model.EventName, data []byte) {
	if event == model.EventForceMoveToLobby {
		m.mu.Lock()
		hub := m.hubs[room]
		delete(m.hubs, room)
		delete(m.latest, room)
		m.mu.Unlock()

		if hub != nil {
			hub.Finish(string(event), string(data))
		}
		return
	}

	frame := formatSSEMessage(string(event), string(data))

	m.mu.Lock()
	if replayed[event] {
		r := m.latest[room]
		if r == nil {
			r = &roomReplay{frames: make(map[model.EventName][]byte)}
			m.latest[room] = r
		}
		r.frames[event] = frame
		r.touched = true
	}
	hub := m.hubs[room]
	m.mu.Unlock()

	if hub != nil {
		hub.Broadcast(frame)
	}
}

// End disconnects a room's spectators and forgets its replay state. A later room
// with the same name starts from a clean feed.
func (m *HubManager) End(room model.RoomName) {
	m.mu.Lock()
	hub, ok := m.hubs[room]
	delete(m.hubs, room)
	delete(m.latest, room)
	m.mu.Unlock()

	if ok {
		hub.Close()
		m.logger.Info("spectator hub ended", slog.String("room", string(room)))
	}
}

// CleanupEmptyHubs removes hubs with no spectators and forgets replay state of rooms
// that have published nothing since the previous cleanup
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for room, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, room)
			removed++
		}
	}

	expired := 0
	for room, r := range m.latest {
		if !r.touched {
			delete(m.latest, room)
			expired++
			continue
		}
		r.touched = false
	}

	if removed > 0 || expired > 0 {
		m.logger.Info("spectator hubs cleaned up",
			slog.Int("removed", removed),
			slog.Int("replay_expired", expired))
	}
}

// RunJanitor calls CleanupEmptyHubs every interval until ctx is cancelled
func (m *HubManager) RunJanitor(ctx context.Context, clk clock.Clock, interval time.Duration) {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			m.CleanupEmptyHubs()
		}
	}
}

// Close closes every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for room, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, room)
	}
}
