package response

import (
	"time"

	"github.com/mcoot/colorclaim/internal/model"
)

// Player represents a room member in API responses
type Player struct {
	ID    string  `json:"id"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:    string(p.ID),
		Color: string(p.Color),
		X:     p.X,
		Y:     p.Y,
	}
}

// Room represents a room in API responses
type Room struct {
	Name             string   `json:"name"`
	Phase            string   `json:"phase,omitempty"`
	RemainingSeconds int      `json:"remaining_seconds"`
	PlayerCount      int      `json:"player_count"`
	Capacity         int      `json:"capacity,omitempty"`
	Players          []Player `json:"players"`
}

// RoomFromSnapshot converts a model.RoomSnapshot. The lobby has no capacity.
func RoomFromSnapshot(s model.RoomSnapshot) Room {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p)
	}

	capacity := model.MaxRoomPlayers
	if s.RoomName == model.LobbyName {
		capacity = 0
	}

	return Room{
		Name:             string(s.RoomName),
		Phase:            string(s.Phase),
		RemainingSeconds: s.RemainingSeconds,
		PlayerCount:      len(players),
		Capacity:         capacity,
		Players:          players,
	}
}

// RoomList is the response for GET /rooms
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// ColorCounts holds per-color pixel counts
type ColorCounts struct {
	Purple int `json:"purple"`
	Red    int `json:"red"`
	Green  int `json:"green"`
	Blue   int `json:"blue"`
}

// Result represents a scored game
type Result struct {
	Room     string      `json:"room"`
	Winner   *string     `json:"winner"`
	Text     string      `json:"text"`
	Counts   ColorCounts `json:"counts"`
	Players  []string    `json:"players"`
	ScoredAt time.Time   `json:"scored_at"`
}

// ResultFromModel converts a model.GameResult
func ResultFromModel(r *model.GameResult) Result {
	var winner *string
	if r.Verdict.HasWinner() {
		w := string(r.Verdict.Winner)
		winner = &w
	}

	players := make([]string, len(r.Players))
	for i, id := range r.Players {
		players[i] = string(id)
	}

	c := r.Verdict.Counts
	return Result{
		Room:     string(r.RoomName),
		Winner:   winner,
		Text:     r.Text,
		Counts:   ColorCounts{Purple: c.Purple, Red: c.Red, Green: c.Green, Blue: c.Blue},
		Players:  players,
		ScoredAt: r.ScoredAt,
	}
}

// ResultList is the response for GET /results
type ResultList struct {
	Results []Result `json:"results"`
}
