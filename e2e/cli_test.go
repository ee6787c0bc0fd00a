package e2e_test

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/colorclaim/internal/api"
	"github.com/mcoot/colorclaim/internal/factory"
	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/services/scheduler"
	"github.com/mcoot/colorclaim/internal/testutil"
	"github.com/mcoot/colorclaim/internal/transport/ws"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "colorclaim")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/colorclaim")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	url string
}

// e2ePhases keep a whole round under a few seconds of wall time
func e2ePhases() scheduler.Config {
	return scheduler.Config{
		WaitSeconds:  40,
		PlaySeconds:  5,
		ScoreSeconds: 40,
		TickInterval: 25 * time.Millisecond,
	}
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{
		Logger:    logger,
		Scheduler: e2ePhases(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	app.Start(ctx)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = "127.0.0.1"
	serverConfig.Port = 0
	serverConfig.ShutdownTimeout = 5 * time.Second

	server := api.NewServer(app.Handler(""), serverConfig, logger)
	server.OnShutdown(func() {
		app.Hub.CloseAll("server shutting down")
		app.HubManager.Close()
	})
	require.NoError(t, server.Listen())

	go func() {
		if err := server.Serve(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + server.Addr()
	waitForServer(t, serverURL+"/api/v1/health")

	t.Cleanup(func() {
		_ = server.Shutdown(context.Background())
		cancel()
		app.Wait()
	})

	return &testServer{url: serverURL}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// player is a WebSocket game client
type player struct {
	t    *testing.T
	conn *websocket.Conn
	id   model.PlayerID
}

func connect(t *testing.T, ts *testServer) *player {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.url, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	p := &player{t: t, conn: conn}
	var joined model.JoinedPayload
	p.expect(model.EventJoined, &joined)
	require.NotEmpty(t, joined.Player.ID)
	p.id = joined.Player.ID
	return p
}

func (p *player) send(event model.EventName, payload any) {
	p.t.Helper()
	frame, err := ws.Encode(event, payload)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, frame))
}

// expect skips frames until the named event arrives
func (p *player) expect(event model.EventName, out any) {
	p.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(p.t, p.conn.SetReadDeadline(deadline))
		_, frame, err := p.conn.ReadMessage()
		require.NoError(p.t, err, "waiting for %s", event)

		env, err := ws.Decode(frame)
		require.NoError(p.t, err)
		if env.Event != event {
			continue
		}
		if out != nil {
			require.NoError(p.t, json.Unmarshal(env.Data, out))
		}
		return
	}
}

// Response types for JSON parsing
type roomResponse struct {
	Name        string `json:"name"`
	Phase       string `json:"phase"`
	PlayerCount int    `json:"player_count"`
	Capacity    int    `json:"capacity"`
	Players     []struct {
		ID    string  `json:"id"`
		Color string  `json:"color"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
	} `json:"players"`
}

type roomListResponse struct {
	Rooms []roomResponse `json:"rooms"`
}

type resultResponse struct {
	Room    string   `json:"room"`
	Winner  *string  `json:"winner"`
	Text    string   `json:"text"`
	Players []string `json:"players"`
	Counts  struct {
		Red  int `json:"red"`
		Blue int `json:"blue"`
	} `json:"counts"`
}

type resultListResponse struct {
	Results []resultResponse `json:"results"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type scoreResponse struct {
	Winner *string `json:"winner"`
	Text   string  `json:"text"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	output, err := cli.run("health")
	require.NoError(t, err, output)

	var health healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	alice := connect(t, ts)
	bob := connect(t, ts)

	// Step 1: alice opens a room and bob joins it
	alice.send(model.EventCreateRoom, "duel")
	alice.expect(model.EventRoomJoined, nil)
	bob.send(model.EventJoinRoom, model.RoomRequest{RoomName: "duel"})
	bob.expect(model.EventRoomJoined, nil)

	output, err := cli.run("rooms", "get", "duel")
	require.NoError(t, err, output)

	var room roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &room))
	assert.Equal(t, "duel", room.Name)
	assert.Equal(t, 2, room.PlayerCount)
	assert.Equal(t, 4, room.Capacity)
	require.Len(t, room.Players, 2)
	assert.Equal(t, string(alice.id), room.Players[0].ID)
	assert.Equal(t, "red", room.Players[0].Color)
	assert.Equal(t, "blue", room.Players[1].Color)
	assert.Equal(t, 700.0, room.Players[1].X)

	output, err = cli.run("rooms", "list")
	require.NoError(t, err, output)
	var list roomListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	require.Len(t, list.Rooms, 1)

	// Step 2: bob moves while the room waits
	bob.send(model.EventMovementUpdate, model.UntrustedPlayerState{X: 650, Y: 10, Alpha: 1, Color: model.ColorBlue})
	var moved model.Player
	for moved.X != 650 {
		alice.expect(model.EventUpdatedMovement, &moved)
	}
	assert.Equal(t, bob.id, moved.ID)
	assert.Equal(t, 10.0, moved.Y)

	// Step 3: the timers run out and the room asks for canvases
	var scoreRequest model.ScoreRequestPayload
	alice.expect(model.EventScoreRequest, &scoreRequest)
	assert.Equal(t, model.RoomName("duel"), scoreRequest.RoomName)

	// one red pixel and three blue
	pixels := []byte{255, 0, 0, 255, 0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255, 255}
	bob.send(model.EventSendCanvas, model.CanvasSubmission{RoomName: "duel", Pixels: pixels, PixelCount: len(pixels)})

	var results model.ResultsPayload
	alice.expect(model.EventResults, &results)
	assert.Equal(t, "Blue Wins", results.Text)

	// Step 4: the recorded result is visible through the CLI
	require.Eventually(t, func() bool {
		_, err := cli.run("rooms", "result", "duel")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	output, err = cli.run("rooms", "result", "duel")
	require.NoError(t, err, output)
	var result resultResponse
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, "Blue Wins", result.Text)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "blue", *result.Winner)
	assert.Equal(t, 3, result.Counts.Blue)
	assert.ElementsMatch(t, []string{string(alice.id), string(bob.id)}, result.Players)

	output, err = cli.run("results", "--limit", "5")
	require.NoError(t, err, output)
	var results2 resultListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &results2))
	require.Len(t, results2.Results, 1)
	assert.Equal(t, "duel", results2.Results[0].Room)

	// Step 5: scoring expires and both players land in the lobby
	alice.expect(model.EventForceMoveToLobby, nil)
	var lobby model.RoomSnapshot
	bob.expect(model.EventRoomJoined, &lobby)
	assert.Equal(t, model.LobbyName, lobby.RoomName)

	output, err = cli.run("rooms", "list")
	require.NoError(t, err, output)
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	assert.Empty(t, list.Rooms)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	t.Run("unknown room", func(t *testing.T) {
		output, err := cli.run("rooms", "get", "nowhere")
		assert.Error(t, err)
		assert.Contains(t, output, "ROOM_NOT_FOUND")
	})

	t.Run("no result yet", func(t *testing.T) {
		output, err := cli.run("rooms", "result", "nowhere")
		assert.Error(t, err)
		assert.Contains(t, output, "RESULT_NOT_FOUND")
	})

	t.Run("bad limit", func(t *testing.T) {
		output, err := cli.run("results", "--limit", "500")
		assert.Error(t, err)
		assert.Contains(t, output, "INVALID_REQUEST")
	})

	t.Run("spectating a missing room", func(t *testing.T) {
		output, err := cli.run("events", "nowhere")
		assert.Error(t, err)
		assert.Contains(t, output, `room "nowhere" does not exist`)
	})

	t.Run("server unreachable", func(t *testing.T) {
		other := &cliRunner{binaryPath: cli.binaryPath, serverURL: "http://127.0.0.1:1"}
		_, err := other.run("health")
		assert.Error(t, err)
	})
}

func TestCLI_ScoreIsOffline(t *testing.T) {
	cli := &cliRunner{binaryPath: newCLIRunner(t, "").binaryPath, serverURL: "http://127.0.0.1:1"}

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{128, 0, 128, 255})
	img.SetRGBA(1, 0, color.RGBA{128, 0, 128, 255})
	img.SetRGBA(0, 1, color.RGBA{0, 255, 0, 255})

	path := filepath.Join(t.TempDir(), "canvas.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	output, err := cli.run("score", path)
	require.NoError(t, err, output)

	var score scoreResponse
	require.NoError(t, json.Unmarshal([]byte(output), &score))
	require.NotNil(t, score.Winner)
	assert.Equal(t, "purple", *score.Winner)
	assert.Equal(t, "Purple Wins", score.Text)
}
