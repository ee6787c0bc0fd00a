package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <room>",
		Short: "Stream a room's events as a spectator",
		Long: `Connect to the room's SSE endpoint and stream its broadcasts in real-time.

Events include:
  - updateTime: countdown tick with the current phase
  - updatedMovement: a player moved
  - left: a player left the room
  - scoreRequest: play ended, canvases are being collected
  - results: the room's verdict
  - forceMoveToLobby: the room closed

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamEvents(ctx, cmd.OutOrStdout(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(ctx context.Context, w io.Writer, room string, jsonOutput bool) error {
	body, err := client.OpenStream(ctx, room)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer func() { _ = body.Close() }()

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to room %s\n", room)
	}

	scanner := bufio.NewScanner(body)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent == "" {
				continue
			}
			printEvent(w, currentEvent, strings.Join(dataLines, "\n"), jsonOutput)
			// the room is gone once everyone has been sent back to the lobby
			if currentEvent == "forceMoveToLobby" {
				if !jsonOutput {
					fmt.Fprintln(w, "Room closed")
				}
				return nil
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

func printEvent(w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		fmt.Fprintln(w, string(jsonData))
		return
	}

	fmt.Fprintf(w, "[%s] %s\n", now.Format("15:04:05"), describeEvent(event, data))
}

// describeEvent renders a room broadcast as one line of text. Unknown events and
// payloads that fail to decode are shown raw.
func describeEvent(event, data string) string {
	var (
		timer struct {
			RemainingSeconds int    `json:"remainingSeconds"`
			Phase            string `json:"phase"`
		}
		moved struct {
			ID    string  `json:"id"`
			X     float64 `json:"x"`
			Y     float64 `json:"y"`
			Color string  `json:"color"`
		}
		left struct {
			PlayerID string `json:"playerId"`
		}
		results struct {
			Text string `json:"text"`
		}
	)

	decoded := func(v any) bool { return json.Unmarshal([]byte(data), v) == nil }

	switch {
	case event == "updateTime" && decoded(&timer):
		return fmt.Sprintf("%s: %ds left", timer.Phase, timer.RemainingSeconds)
	case event == "updatedMovement" && decoded(&moved):
		return fmt.Sprintf("%s [%s] at (%g, %g)", moved.ID, moved.Color, moved.X, moved.Y)
	case event == "left" && decoded(&left):
		return left.PlayerID + " left"
	case event == "scoreRequest":
		return "time is up, collecting canvases"
	case event == "results" && decoded(&results):
		return "result: " + results.Text
	case event == "forceMoveToLobby":
		return "everyone returns to the lobby"
	}

	display := strings.ReplaceAll(data, "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	return event + ": " + display
}
