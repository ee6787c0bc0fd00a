package model

// Color is a player/territory color
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
)

// Slot is a fixed starting corner and color within a room
type Slot struct {
	Index int
	X     float64
	Y     float64
	Color Color
}

// SlotTable maps slot index to starting corner and color
var SlotTable = [MaxRoomPlayers]Slot{
	{Index: 0, X: 0, Y: 0, Color: ColorRed},
	{Index: 1, X: 700, Y: 0, Color: ColorBlue},
	{Index: 2, X: 0, Y: 500, Color: ColorGreen},
	{Index: 3, X: 700, Y: 500, Color: ColorPurple},
}

// AssignTo gives the player the slot's color and puts them on its corner
func (s Slot) AssignTo(p *Player) {
	p.Color = s.Color
	p.PlaceAt(s.X, s.Y)
}
