package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/web/sse"
)

// EventsHandler serves spectator streams for rooms
type EventsHandler struct {
	rooms      RoomQuerier
	hubManager *sse.HubManager
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(rooms RoomQuerier, hubManager *sse.HubManager) *EventsHandler {
	return &EventsHandler{rooms: rooms, hubManager: hubManager}
}

// Events handles the SSE event stream for a room
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	name := model.NormalizeRoomName(mux.Vars(r)["name"])

	if _, err := h.rooms.Room(r.Context(), name); err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	sse.ServeSSE(w, r, h.hubManager, name)
}
