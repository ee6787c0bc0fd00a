package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

// Socket is the connection a Client pumps messages through
type Socket interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Ping() error
	Close(reason string)
}

type socket struct {
	conn      *websocket.Conn
	writeWait time.Duration
}

// NewSocket wraps a gorilla connection. Every pong extends the read deadline by pongWait.
func NewSocket(conn *websocket.Conn, cfg Config) Socket {
	conn.SetReadLimit(cfg.MaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})
	return &socket{conn: conn, writeWait: cfg.WriteWait}
}

func (s *socket) Read() ([]byte, error) {
	_, p, err := s.conn.ReadMessage()
	return p, err
}

func (s *socket) Write(data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *socket) Ping() error {
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeWait))
}

// Close may run concurrently with Write, so the close frame goes through WriteControl
func (s *socket) Close(reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeWait))
	_ = s.conn.Close()
}
