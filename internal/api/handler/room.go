package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/colorclaim/internal/api/response"
	"github.com/mcoot/colorclaim/internal/model"
)

// RoomQuerier reads room state
type RoomQuerier interface {
	Rooms(ctx context.Context) ([]model.RoomSnapshot, error)
	Room(ctx context.Context, name model.RoomName) (model.RoomSnapshot, error)
}

// RoomHandler handles room endpoints
type RoomHandler struct {
	rooms RoomQuerier
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms RoomQuerier) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.rooms.Rooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	rooms := make([]response.Room, len(snapshots))
	for i, s := range snapshots {
		rooms[i] = response.RoomFromSnapshot(s)
	}
	response.JSON(w, http.StatusOK, response.RoomList{Rooms: rooms})
}

// Get handles GET /api/v1/rooms/{name}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := model.RoomName(mux.Vars(r)["name"])

	snapshot, err := h.rooms.Room(r.Context(), name)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromSnapshot(snapshot))
}
