package middleware

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Request kinds reported in the access log
const (
	KindRequest   = "request"
	KindWebSocket = "websocket"
	KindStream    = "stream"
)

// quietPaths are polled by probes and scrapers and only logged at debug level
var quietPaths = map[string]bool{
	"/metrics":       true,
	"/api/v1/health": true,
}

// ResponseWriter records what a handler did with the response so the access log can
// tell plain requests from upgraded sockets and event streams
type ResponseWriter struct {
	http.ResponseWriter
	status   int
	size     int
	hijacked bool
}

func (rw *ResponseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Status returns the captured status code
func (rw *ResponseWriter) Status() int {
	return rw.status
}

// Size returns the number of body bytes written
func (rw *ResponseWriter) Size() int {
	return rw.size
}

// Kind classifies the finished response
func (rw *ResponseWriter) Kind() string {
	switch {
	case rw.hijacked:
		return KindWebSocket
	case strings.HasPrefix(rw.Header().Get("Content-Type"), "text/event-stream"):
		return KindStream
	default:
		return KindRequest
	}
}

// Flush passes through so SSE handlers can push events
func (rw *ResponseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack passes through so the WebSocket upgrader can take the connection
func (rw *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	conn, buf, err := hijacker.Hijack()
	if err == nil {
		rw.hijacked = true
		rw.status = http.StatusSwitchingProtocols
	}
	return conn, buf, err
}

// Logging writes one access log line per request once the handler returns. For
// WebSocket sessions and SSE streams that is when the connection ends, so the
// duration is the session length.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &ResponseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			kind := wrapped.Kind()
			msg := "http request"
			if kind != KindRequest {
				msg = "connection closed"
			}

			level := slog.LevelInfo
			switch {
			case wrapped.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case quietPaths[r.URL.Path]:
				level = slog.LevelDebug
			}

			logger.LogAttrs(r.Context(), level, msg,
				slog.String("kind", kind),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.status),
				slog.Int("size", wrapped.size),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
