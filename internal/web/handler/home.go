package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/web/templates/layout"
	"github.com/mcoot/colorclaim/internal/web/templates/pages"
)

// RoomQuerier reads room state
type RoomQuerier interface {
	Rooms(ctx context.Context) ([]model.RoomSnapshot, error)
	Room(ctx context.Context, name model.RoomName) (model.RoomSnapshot, error)
}

// HomeHandler handles the home page
type HomeHandler struct {
	rooms         RoomQuerier
	webSocketPath string
	scripts       []string
	logger        *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(rooms RoomQuerier, webSocketPath string, scripts []string, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		rooms:         rooms,
		webSocketPath: webSocketPath,
		scripts:       scripts,
		logger:        logger,
	}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	lobby, err := h.rooms.Room(r.Context(), model.LobbyName)
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	rooms, err := h.rooms.Rooms(r.Context())
	if err != nil {
		h.unavailable(w, r, err)
		return
	}

	data := pages.HomeData{
		PageData: layout.PageData{
			Title:   "Home",
			Scripts: h.scripts,
		},
		Lobby:         lobby,
		Rooms:         rooms,
		WebSocketPath: h.webSocketPath,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Home(data).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *HomeHandler) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("room query failed", slog.Any("error", err))
	renderError(w, r, http.StatusServiceUnavailable, "Service Unavailable", "The game server is shutting down.")
}
