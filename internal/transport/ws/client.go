package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/colorclaim/internal/dependencies/clock"
	"github.com/mcoot/colorclaim/internal/metrics"
	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/services/gateway"
)

// Client is one WebSocket connection
type Client struct {
	id          model.PlayerID
	socket      Socket
	send        chan []byte
	limiter     *rate.Limiter
	connectedAt time.Time
	closeOnce   sync.Once
}

// NewClient creates a client for a connected socket
func NewClient(id model.PlayerID, socket Socket, cfg Config, now time.Time) *Client {
	return &Client{
		id:          id,
		socket:      socket,
		send:        make(chan []byte, cfg.SendBufferSize),
		limiter:     rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), cfg.Burst),
		connectedAt: now,
	}
}

// ID returns the player id bound to this connection
func (c *Client) ID() model.PlayerID {
	return c.id
}

// ReadPump reads frames until the socket fails and hands each decoded event to sessions.
// Frames over the rate limit or that fail to decode are dropped.
func (c *Client) ReadPump(ctx context.Context, sessions Sessions, m *metrics.Metrics, logger *slog.Logger) {
	for {
		frame, err := c.socket.Read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", slog.Any("error", err))
			}
			return
		}

		if !c.limiter.Allow() {
			m.ObserveInboundDrop("rate_limited")
			continue
		}

		env, err := Decode(frame)
		if err != nil {
			m.ObserveInboundDrop("malformed")
			logger.Debug("malformed frame dropped", slog.Any("error", err))
			continue
		}

		if err := sessions.Dispatch(ctx, c.id, env.Event, env.Data); err != nil {
			if errors.Is(err, gateway.ErrStopped) || ctx.Err() != nil {
				return
			}
			m.ObserveInboundDrop("rejected")
			logger.Debug("event dropped",
				slog.String("event", string(env.Event)),
				slog.Any("error", err))
		}
	}
}

// WritePump writes queued frames and periodic pings until the send channel is closed
// or a write fails. It closes the socket on exit.
func (c *Client) WritePump(clk clock.Clock, pingInterval time.Duration) {
	ticker := clk.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close("")
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.socket.Write(frame); err != nil {
				return
			}
		case <-ticker.C():
			if err := c.socket.Ping(); err != nil {
				return
			}
		}
	}
}

func (c *Client) close(reason string) {
	c.closeOnce.Do(func() { c.socket.Close(reason) })
}
