package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case RoomList:
		o.printRoomList(v)
	case Result:
		o.printResult(v)
	case ResultList:
		o.printResultList(v)
	case ScoreResult:
		o.printScoreResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID    string  `json:"id"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Room response type
type Room struct {
	Name             string   `json:"name"`
	Phase            string   `json:"phase,omitempty"`
	RemainingSeconds int      `json:"remaining_seconds"`
	PlayerCount      int      `json:"player_count"`
	Capacity         int      `json:"capacity,omitempty"`
	Players          []Player `json:"players"`
}

// RoomList response type
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// ColorCounts response type
type ColorCounts struct {
	Purple int `json:"purple"`
	Red    int `json:"red"`
	Green  int `json:"green"`
	Blue   int `json:"blue"`
}

// Result response type
type Result struct {
	Room     string      `json:"room"`
	Winner   *string     `json:"winner"`
	Text     string      `json:"text"`
	Counts   ColorCounts `json:"counts"`
	Players  []string    `json:"players"`
	ScoredAt time.Time   `json:"scored_at"`
}

// ResultList response type
type ResultList struct {
	Results []Result `json:"results"`
}

// ScoreResult is the output of a local score
type ScoreResult struct {
	File   string      `json:"file"`
	Winner *string     `json:"winner"`
	Text   string      `json:"text"`
	Counts ColorCounts `json:"counts"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r Room) {
	fmt.Fprintf(o.w, "Room: %s\n", r.Name)
	if r.Phase != "" {
		fmt.Fprintf(o.w, "Phase: %s (%ds left)\n", r.Phase, r.RemainingSeconds)
	}
	if r.Capacity > 0 {
		fmt.Fprintf(o.w, "Players (%d/%d):\n", r.PlayerCount, r.Capacity)
	} else {
		fmt.Fprintf(o.w, "Players (%d):\n", r.PlayerCount)
	}
	for _, p := range r.Players {
		fmt.Fprintf(o.w, "  - %s [%s] at (%g, %g)\n", p.ID, p.Color, p.X, p.Y)
	}
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.w, "No rooms")
		return
	}
	for _, r := range l.Rooms {
		fmt.Fprintf(o.w, "%-20s %-8s %4ds  %d/%d\n", r.Name, r.Phase, r.RemainingSeconds, r.PlayerCount, r.Capacity)
	}
}

func (o *Output) printResult(r Result) {
	fmt.Fprintf(o.w, "Room: %s\n", r.Room)
	fmt.Fprintf(o.w, "Scored: %s\n", r.ScoredAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(o.w, "Verdict: %s\n", r.Text)
	o.printCounts(r.Counts)
	if len(r.Players) > 0 {
		fmt.Fprintf(o.w, "Players: %s\n", strings.Join(r.Players, ", "))
	}
}

func (o *Output) printResultList(l ResultList) {
	if len(l.Results) == 0 {
		fmt.Fprintln(o.w, "No results")
		return
	}
	for _, r := range l.Results {
		fmt.Fprintf(o.w, "[%s] %s: %s\n", r.ScoredAt.Format("2006-01-02 15:04:05"), r.Room, r.Text)
	}
}

func (o *Output) printScoreResult(s ScoreResult) {
	fmt.Fprintf(o.w, "File: %s\n", s.File)
	fmt.Fprintf(o.w, "Verdict: %s\n", s.Text)
	o.printCounts(s.Counts)
}

func (o *Output) printCounts(c ColorCounts) {
	fmt.Fprintf(o.w, "  purple: %d\n  red:    %d\n  green:  %d\n  blue:   %d\n", c.Purple, c.Red, c.Green, c.Blue)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
