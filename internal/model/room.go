package model

import (
	"sort"
	"strings"
	"time"
)

// RoomName is the unique key of a room, chosen by its creator
type RoomName string

// LobbyName is the reserved name of the permanent lobby
const LobbyName RoomName = "lobby"

// MaxRoomPlayers is the capacity of a game room; the lobby is unbounded
const MaxRoomPlayers = 4

// RoomPhase represents the current phase of a game room
type RoomPhase string

const (
	PhaseWaiting RoomPhase = "waiting" // accepting players, counting down to play
	PhasePlaying RoomPhase = "playing"
	PhaseScoring RoomPhase = "scoring" // canvas requested, counting down to close
	PhaseClosed  RoomPhase = "closed"
)

// Room is a named group of players. The lobby is a Room with no phase and no capacity.
type Room struct {
	Name             RoomName
	Phase            RoomPhase
	RemainingSeconds int
	Players          map[PlayerID]*Player
	Scored           bool
	CreatedAt        time.Time

	// slots[i] holds the member occupying slot i, empty when free
	slots [MaxRoomPlayers]PlayerID
}

// NewLobby creates the permanent lobby room
func NewLobby(now time.Time) *Room {
	return &Room{
		Name:      LobbyName,
		Players:   make(map[PlayerID]*Player),
		CreatedAt: now,
	}
}

// NewRoom creates an empty game room in the waiting phase
func NewRoom(name RoomName, waitSeconds int, now time.Time) *Room {
	return &Room{
		Name:             name,
		Phase:            PhaseWaiting,
		RemainingSeconds: waitSeconds,
		Players:          make(map[PlayerID]*Player),
		CreatedAt:        now,
	}
}

// NormalizeRoomName trims surrounding whitespace from a client-supplied name
func NormalizeRoomName(name string) RoomName {
	return RoomName(strings.TrimSpace(name))
}

// IsLobby reports whether the room is the permanent lobby
func (r *Room) IsLobby() bool {
	return r.Name == LobbyName
}

// Count returns the number of members
func (r *Room) Count() int {
	return len(r.Players)
}

// IsFull reports whether the room is at capacity. The lobby is never full.
func (r *Room) IsFull() bool {
	return !r.IsLobby() && len(r.Players) >= MaxRoomPlayers
}

// IsAccepting reports whether new members may join
func (r *Room) IsAccepting() bool {
	return r.IsLobby() || r.Phase == PhaseWaiting
}

// Has reports whether the player is a member
func (r *Room) Has(id PlayerID) bool {
	_, ok := r.Players[id]
	return ok
}

// Add makes the player a member. In a game room the player takes the lowest free slot
// and is moved to its corner; existing members keep their slots.
// Returns false if the room has no free slot.
func (r *Room) Add(p *Player) bool {
	if r.IsLobby() {
		r.Players[p.ID] = p
		p.RoomName = r.Name
		return true
	}

	for i := range r.slots {
		if r.slots[i] == "" {
			r.slots[i] = p.ID
			r.Players[p.ID] = p
			p.RoomName = r.Name
			SlotTable[i].AssignTo(p)
			return true
		}
	}
	return false
}

// Remove drops the player from the room, freeing their slot
func (r *Room) Remove(id PlayerID) bool {
	if _, ok := r.Players[id]; !ok {
		return false
	}
	delete(r.Players, id)
	for i := range r.slots {
		if r.slots[i] == id {
			r.slots[i] = ""
		}
	}
	return true
}

// SlotOf returns the slot index held by the player
func (r *Room) SlotOf(id PlayerID) (int, bool) {
	for i, occupant := range r.slots {
		if occupant != "" && occupant == id {
			return i, true
		}
	}
	return 0, false
}

// Members returns members in slot order for game rooms, or by id for the lobby
func (r *Room) Members() []*Player {
	members := make([]*Player, 0, len(r.Players))
	if r.IsLobby() {
		for _, p := range r.Players {
			members = append(members, p)
		}
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		return members
	}
	for _, id := range r.slots {
		if p, ok := r.Players[id]; ok && id != "" {
			members = append(members, p)
		}
	}
	return members
}

// MemberIDs returns the ids of Members in the same order
func (r *Room) MemberIDs() []PlayerID {
	members := r.Members()
	ids := make([]PlayerID, len(members))
	for i, p := range members {
		ids[i] = p.ID
	}
	return ids
}

// RoomSnapshot is a copy of a room's state, safe to share outside the owning goroutine
type RoomSnapshot struct {
	RoomName         RoomName  `json:"roomName"`
	Phase            RoomPhase `json:"phase,omitempty"`
	RemainingSeconds int       `json:"remainingSeconds"`
	Players          []Player  `json:"players"`
}

// Snapshot copies the room's current state
func (r *Room) Snapshot() RoomSnapshot {
	members := r.Members()
	players := make([]Player, len(members))
	for i, p := range members {
		players[i] = *p
	}
	return RoomSnapshot{
		RoomName:         r.Name,
		Phase:            r.Phase,
		RemainingSeconds: r.RemainingSeconds,
		Players:          players,
	}
}
