package model

import "time"

// PlayerID uniquely identifies a connected player for the lifetime of the connection
type PlayerID string

// Default display state for a freshly connected player
const (
	DefaultPlayerWidth  = 100
	DefaultPlayerHeight = 100
	DefaultPlayerColor  = ColorRed
)

// Player is the per-connection session record.
// ID and RoomName are owned by the server; every other field is reported by the client.
type Player struct {
	ID       PlayerID `json:"id"`
	RoomName RoomName `json:"roomName"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	PrevX  float64 `json:"prevX"`
	PrevY  float64 `json:"prevY"`
	DestX  float64 `json:"destX"`
	DestY  float64 `json:"destY"`
	Alpha  float64 `json:"alpha"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  Color   `json:"color"`

	// LastUpdate is the unix millisecond timestamp of the most recent movement update
	LastUpdate int64 `json:"lastUpdate"`
}

// NewPlayer creates a player in the lobby with default display state
func NewPlayer(id PlayerID, now time.Time) *Player {
	return &Player{
		ID:         id,
		RoomName:   LobbyName,
		Width:      DefaultPlayerWidth,
		Height:     DefaultPlayerHeight,
		Color:      DefaultPlayerColor,
		LastUpdate: now.UnixMilli(),
	}
}

// PlaceAt moves the player to a fixed point, resetting previous position and destination
func (p *Player) PlaceAt(x, y float64) {
	p.X, p.Y = x, y
	p.PrevX, p.PrevY = x, y
	p.DestX, p.DestY = x, y
}

// UntrustedPlayerState is display state exactly as reported by a client.
// Nothing in it is validated; it must only reach a Player through Apply.
type UntrustedPlayerState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	PrevX  float64 `json:"prevX"`
	PrevY  float64 `json:"prevY"`
	DestX  float64 `json:"destX"`
	DestY  float64 `json:"destY"`
	Alpha  float64 `json:"alpha"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  Color   `json:"color"`
}

// Apply overwrites the player's display state wholesale with client-reported values
func (s UntrustedPlayerState) Apply(p *Player, now time.Time) {
	p.X, p.Y = s.X, s.Y
	p.PrevX, p.PrevY = s.PrevX, s.PrevY
	p.DestX, p.DestY = s.DestX, s.DestY
	p.Alpha = s.Alpha
	p.Width, p.Height = s.Width, s.Height
	p.Color = s.Color
	p.LastUpdate = now.UnixMilli()
}
