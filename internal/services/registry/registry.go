package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/colorclaim/internal/dependencies/clock"
	"github.com/mcoot/colorclaim/internal/model"
)

// Timers starts and cancels the per-room countdown
type Timers interface {
	Start(name model.RoomName)
	Stop(name model.RoomName)
}

// Config holds registry settings
type Config struct {
	// WaitSeconds seeds the countdown of newly created rooms
	WaitSeconds int
}

// Move describes a membership change made by the registry
type Move struct {
	// From is the room the player left, nil if the player did not change rooms
	From *model.Room
	// FromDestroyed is set when leaving emptied From and it was removed
	FromDestroyed bool
	// To is the room the player is now in
	To *model.Room
}

// Changed reports whether the player actually moved
func (m Move) Changed() bool {
	return m.From != nil
}

// Registry owns every room, including the permanent lobby, and every connected player.
// It is not safe for concurrent use; a single goroutine must own it.
type Registry struct {
	rooms   map[model.RoomName]*model.Room
	players map[model.PlayerID]*model.Player
	timers  Timers
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// New creates a Registry containing only the lobby
func New(cfg Config, timers Timers, clk clock.Clock, logger *slog.Logger) *Registry {
	lobby := model.NewLobby(clk.Now())
	return &Registry{
		rooms:   map[model.RoomName]*model.Room{model.LobbyName: lobby},
		players: make(map[model.PlayerID]*model.Player),
		timers:  timers,
		clock:   clk,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Connect creates a session for a new player and places it in the lobby
func (r *Registry) Connect(id model.PlayerID) *model.Player {
	if p, ok := r.players[id]; ok {
		return p
	}
	p := model.NewPlayer(id, r.clock.Now())
	r.players[id] = p
	r.Lobby().Add(p)
	return p
}

// Player returns a connected player
func (r *Registry) Player(id model.PlayerID) (*model.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return p, nil
}

// Lobby returns the permanent lobby
func (r *Registry) Lobby() *model.Room {
	return r.rooms[model.LobbyName]
}

// Room returns a room by name
func (r *Registry) Room(name model.RoomName) (*model.Room, error) {
	room, ok := r.rooms[name]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Rooms returns all game rooms sorted by name, excluding the lobby
func (r *Registry) Rooms() []*model.Room {
	rooms := make([]*model.Room, 0, len(r.rooms)-1)
	for _, room := range r.rooms {
		if !room.IsLobby() {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms
}

// PlayerCount returns the number of connected players
func (r *Registry) PlayerCount() int {
	return len(r.players)
}

// RoomCount returns the number of game rooms, excluding the lobby
func (r *Registry) RoomCount() int {
	return len(r.rooms) - 1
}

// CreateRoom creates a waiting room and admits the requester as its first member
func (r *Registry) CreateRoom(name model.RoomName, id model.PlayerID) (Move, error) {
	p, err := r.Player(id)
	if err != nil {
		return Move{}, err
	}
	if name == "" {
		return Move{}, model.ErrInvalidRoomName
	}
	if _, exists := r.rooms[name]; exists {
		return Move{}, fmt.Errorf("create %q: %w", name, model.ErrRoomExists)
	}

	room := model.NewRoom(name, r.cfg.WaitSeconds, r.clock.Now())
	r.rooms[name] = room
	r.timers.Start(name)

	r.logger.Info("room created",
		slog.String("room", string(name)),
		slog.String("player_id", string(id)))

	return r.transfer(p, room), nil
}

// JoinRoom admits the requester into an existing waiting room.
// Joining the room the player is already in changes nothing.
func (r *Registry) JoinRoom(name model.RoomName, id model.PlayerID) (Move, error) {
	p, err := r.Player(id)
	if err != nil {
		return Move{}, err
	}
	room, ok := r.rooms[name]
	if !ok {
		return Move{}, fmt.Errorf("join %q: %w", name, model.ErrRoomNotFound)
	}
	if room.Has(id) {
		return Move{To: room}, nil
	}
	if room.IsFull() {
		return Move{}, fmt.Errorf("join %q: %w", name, model.ErrRoomFull)
	}
	if !room.IsAccepting() {
		return Move{}, fmt.Errorf("join %q: %w", name, model.ErrRoomNotAccepting)
	}

	return r.transfer(p, room), nil
}

// MoveToLobby returns the requester to the lobby from whichever room holds them
func (r *Registry) MoveToLobby(name model.RoomName, id model.PlayerID) (Move, error) {
	p, err := r.Player(id)
	if err != nil {
		return Move{}, err
	}
	if p.RoomName != name {
		r.logger.Warn("move to lobby names a room the player is not in",
			slog.String("player_id", string(id)),
			slog.String("named_room", string(name)),
			slog.String("actual_room", string(p.RoomName)))
	}
	lobby := r.Lobby()
	if lobby.Has(id) {
		return Move{To: lobby}, nil
	}
	return r.transfer(p, lobby), nil
}

// RemovePlayer drops a disconnected player from the registry.
// Removing an unknown player is a no-op and reports false.
func (r *Registry) RemovePlayer(id model.PlayerID) (Move, bool) {
	p, ok := r.players[id]
	if !ok {
		return Move{}, false
	}
	delete(r.players, id)
	from, destroyed := r.detach(p)
	return Move{From: from, FromDestroyed: destroyed}, true
}

// CloseRoom cancels a room's timer, returns every member to the lobby and removes the room.
// The moved players are returned in slot order.
func (r *Registry) CloseRoom(name model.RoomName) ([]*model.Player, error) {
	room, ok := r.rooms[name]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	if room.IsLobby() {
		return nil, fmt.Errorf("close %q: lobby cannot be closed", name)
	}

	r.timers.Stop(name)
	room.Phase = model.PhaseClosed

	members := room.Members()
	lobby := r.Lobby()
	for _, p := range members {
		room.Remove(p.ID)
		lobby.Add(p)
	}
	delete(r.rooms, name)

	r.logger.Info("room closed",
		slog.String("room", string(name)),
		slog.Int("returned_players", len(members)))

	return members, nil
}

// transfer moves a player from their current room into dest
func (r *Registry) transfer(p *model.Player, dest *model.Room) Move {
	from, destroyed := r.detach(p)
	dest.Add(p)
	return Move{From: from, FromDestroyed: destroyed, To: dest}
}

// detach removes the player from their current room, destroying it if left empty
func (r *Registry) detach(p *model.Player) (*model.Room, bool) {
	room, ok := r.rooms[p.RoomName]
	if !ok || !room.Remove(p.ID) {
		return nil, false
	}
	if room.IsLobby() || room.Count() > 0 {
		return room, false
	}

	r.timers.Stop(room.Name)
	delete(r.rooms, room.Name)
	r.logger.Info("empty room destroyed", slog.String("room", string(room.Name)))
	return room, true
}
