package model

import "time"

// Verdict texts
const (
	VerdictNoWinnerText = "There is no clear winner"
)

// ColorCounts holds exact-match pixel counts per territory color
type ColorCounts struct {
	Purple int `json:"purple"`
	Red    int `json:"red"`
	Green  int `json:"green"`
	Blue   int `json:"blue"`
}

// Verdict is the outcome of scoring a canvas. Winner is empty when there is no clear winner.
type Verdict struct {
	Winner Color       `json:"winner,omitempty"`
	Counts ColorCounts `json:"counts"`
}

// HasWinner reports whether a single color strictly won
func (v Verdict) HasWinner() bool {
	return v.Winner != ""
}

// Text renders the verdict as shown to players
func (v Verdict) Text() string {
	switch v.Winner {
	case ColorPurple:
		return "Purple Wins"
	case ColorRed:
		return "Red Wins"
	case ColorGreen:
		return "Green Wins"
	case ColorBlue:
		return "Blue Wins"
	default:
		return VerdictNoWinnerText
	}
}

// GameResult is a scored game, kept in the results history
type GameResult struct {
	RoomName RoomName   `json:"roomName"`
	Verdict  Verdict    `json:"verdict"`
	Text     string     `json:"text"`
	Players  []PlayerID `json:"players"`
	ScoredAt time.Time  `json:"scoredAt"`
}
