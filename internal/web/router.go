package web

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/mcoot/colorclaim/internal/metrics"
	"github.com/mcoot/colorclaim/internal/web/handler"
	"github.com/mcoot/colorclaim/internal/web/middleware"
	"github.com/mcoot/colorclaim/internal/web/sse"
)

// WebSocketPath is the route of the game connection endpoint
const WebSocketPath = "/ws"

// clientScript is the game client bundle, linked from the home page when present in StaticDir
const clientScript = "app.js"

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger *slog.Logger
	// WebSocket serves game connections on WebSocketPath
	WebSocket  http.Handler
	Rooms      handler.RoomQuerier
	HubManager *sse.HubManager
	// Metrics is exposed on /metrics when set
	Metrics   *metrics.Metrics
	StaticDir string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))

	// Create SSE hub manager if not provided
	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}

	var scripts []string
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)

		if _, err := os.Stat(filepath.Join(cfg.StaticDir, clientScript)); err == nil {
			scripts = append(scripts, "/static/"+clientScript)
		}
	}

	homeHandler := handler.NewHomeHandler(cfg.Rooms, WebSocketPath, scripts, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.Rooms, hubManager)

	r.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{name}/events", eventsHandler.Events).Methods(http.MethodGet)

	if cfg.WebSocket != nil {
		r.Handle(WebSocketPath, cfg.WebSocket).Methods(http.MethodGet)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}
