package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/colorclaim/internal/dependencies/clock"
	"github.com/mcoot/colorclaim/internal/metrics"
	"github.com/mcoot/colorclaim/internal/model"
)

const disconnectTimeout = 5 * time.Second

// Sessions is the game side of a connection
type Sessions interface {
	NewPlayerID() model.PlayerID
	Connect(ctx context.Context, id model.PlayerID) error
	Disconnect(ctx context.Context, id model.PlayerID) error
	Dispatch(ctx context.Context, id model.PlayerID, event model.EventName, data json.RawMessage) error
}

// Handler upgrades HTTP requests to WebSocket sessions
type Handler struct {
	hub      *Hub
	sessions Sessions
	cfg      Config
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, sessions Sessions, cfg Config, clk clock.Clock, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		sessions: sessions,
		cfg:      cfg,
		clock:    clk,
		metrics:  m,
		logger:   logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP runs one session for the lifetime of the connection
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.Any("error", err))
		return
	}

	id := h.sessions.NewPlayerID()
	logger := h.logger.With(slog.String("player_id", string(id)))
	client := NewClient(id, NewSocket(conn, h.cfg), h.cfg, h.clock.Now())

	h.hub.Register(client)
	go client.WritePump(h.clock, h.cfg.PingInterval)

	ctx := r.Context()
	if err := h.sessions.Connect(ctx, id); err != nil {
		logger.Error("failed to connect session", slog.Any("error", err))
		h.hub.Unregister(id)
		return
	}

	client.ReadPump(ctx, h.sessions, h.metrics, logger)

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
	defer cancel()
	if err := h.sessions.Disconnect(dctx, id); err != nil {
		logger.Warn("failed to disconnect session", slog.Any("error", err))
	}
	h.hub.Unregister(id)
}
