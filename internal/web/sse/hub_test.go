package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/colorclaim/internal/dependencies/mocks"
	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "member-update",
			data:      "<div>\n  <p>line1</p>\n  <p>line2</p>\n</div>",
			expected:  "event: member-update\ndata: <div>\ndata:   <p>line1</p>\ndata:   <p>line2</p>\ndata: </div>\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single line",
			input:    "hello",
			expected: []string{"hello"},
		},
		{
			name:     "two lines",
			input:    "line1\nline2",
			expected: []string{"line1", "line2"},
		},
		{
			name:     "trailing newline",
			input:    "line1\n",
			expected: []string{"line1"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{""},
		},
		{
			name:     "crlf line endings",
			input:    "line1\r\nline2\r\n",
			expected: []string{"line1", "line2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("A", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient()
	if !hub.Register(client) {
		t.Fatal("Register() = false on a running hub")
	}
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent("updateTime", `{"remainingSeconds":3}`)

	select {
	case msg := <-client.send:
		expected := "event: updateTime\ndata: {\"remainingSeconds\":3}\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("A", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient()
	hub.Register(client)
	hub.Unregister(client)

	if _, ok := <-client.send; ok {
		t.Error("send channel still open after unregister")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHub_RegisterAfterClose(t *testing.T) {
	hub := NewHub("A", testutil.NopLogger())
	go hub.Run()
	hub.Close()
	hub.Close()

	if hub.Register(NewClient()) {
		t.Error("Register() = true on a closed hub")
	}
	hub.Unregister(NewClient())
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	hub1 := manager.GetOrCreateHub("A")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}
	if hub2 := manager.GetOrCreateHub("A"); hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same room")
	}
	if hub3 := manager.GetOrCreateHub("B"); hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different room")
	}
}

func TestHubManager_End(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	manager.Publish("A", model.EventUpdateTime, []byte(`{"remainingSeconds":3}`))
	client := NewClient()
	manager.GetOrCreateHub("A").Register(client)
	<-client.send // replayed countdown

	manager.End("A")

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("unexpected frame after End")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("stream not closed after End")
	}
	if manager.GetHub("A") != nil {
		t.Error("hub still exists after End")
	}

	fresh := NewClient()
	manager.GetOrCreateHub("A").Register(fresh)
	select {
	case msg := <-fresh.send:
		t.Errorf("ended room replayed %q", string(msg))
	case <-time.After(20 * time.Millisecond):
	}

	manager.End("missing")
}

func TestHubManager_PublishReachesOnlyThatRoom(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	a := NewClient()
	b := NewClient()
	manager.GetOrCreateHub("A").Register(a)
	manager.GetOrCreateHub("B").Register(b)

	manager.Publish("A", model.EventResults, []byte(`{"text":"Red Wins"}`))
	manager.Publish("nobody-watching", model.EventResults, []byte(`{}`))

	select {
	case msg := <-a.send:
		if !strings.Contains(string(msg), "event: results\n") {
			t.Errorf("unexpected message %q", string(msg))
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("spectator of A did not receive the broadcast")
	}
	select {
	case msg := <-b.send:
		t.Errorf("spectator of B received %q", string(msg))
	case <-time.After(20 * time.Millisecond):
	}
	if manager.GetHub("nobody-watching") != nil {
		t.Error("Publish created a hub")
	}
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	manager.GetOrCreateHub("EMPTY")
	active := manager.GetOrCreateHub("ACTIVE")
	active.Register(NewClient())
	time.Sleep(10 * time.Millisecond)

	manager.CleanupEmptyHubs()

	if manager.GetHub("EMPTY") != nil {
		t.Error("Empty hub still exists after cleanup")
	}
	if manager.GetHub("ACTIVE") == nil {
		t.Error("Active hub was removed during cleanup")
	}
}

func TestHubManager_RunJanitor(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager.GetOrCreateHub("EMPTY")
	done := make(chan struct{})
	go func() {
		manager.RunJanitor(ctx, clk, time.Minute)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for manager.GetHub("EMPTY") != nil && time.Now().Before(deadline) {
		clk.Advance(time.Minute)
		time.Sleep(5 * time.Millisecond)
	}
	if manager.GetHub("EMPTY") != nil {
		t.Error("janitor did not remove the empty hub")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("janitor did not stop")
	}
}

func TestServeSSE_StreamsBroadcasts(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, manager, "A")
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(buf[:n]), "event: connected") {
		t.Errorf("first event = %q, want connected", string(buf[:n]))
	}

	manager.Publish("A", model.EventUpdateTime, []byte(`{"remainingSeconds":9}`))

	n, err = resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(buf[:n]), `data: {"remainingSeconds":9}`) {
		t.Errorf("broadcast = %q", string(buf[:n]))
	}
}

func TestHubManager_ReplaysLatestCountdownToLateSpectators(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	manager.Publish("A", model.EventUpdateTime, []byte(`{"remainingSeconds":5,"phase":"playing"}`))
	manager.Publish("A", model.EventUpdateTime, []byte(`{"remainingSeconds":4,"phase":"playing"}`))
	manager.Publish("A", model.EventUpdatedMovement, []byte(`{"id":"p1"}`))

	client := NewClient()
	manager.GetOrCreateHub("A").Register(client)

	select {
	case msg := <-client.send:
		want := "event: updateTime\ndata: {\"remainingSeconds\":4,\"phase\":\"playing\"}\n\n"
		if string(msg) != want {
			t.Errorf("replayed %q, want %q", string(msg), want)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("late spectator got no replay")
	}

	select {
	case msg := <-client.send:
		t.Errorf("unexpected extra replay %q", string(msg))
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubManager_ForceMoveToLobbyEndsStreams(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	manager.Publish("A", model.EventResults, []byte(`{"text":"Red Wins"}`))
	client := NewClient()
	manager.GetOrCreateHub("A").Register(client)
	<-client.send // replayed verdict

	manager.Publish("A", model.EventForceMoveToLobby, []byte(`{}`))

	select {
	case msg := <-client.send:
		if !strings.Contains(string(msg), "event: forceMoveToLobby\n") {
			t.Errorf("final frame = %q", string(msg))
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("final frame not delivered")
	}

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("stream still open after forceMoveToLobby")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("stream not closed after forceMoveToLobby")
	}

	if manager.GetHub("A") != nil {
		t.Error("hub of a closed room is still registered")
	}

	// a new room with the same name starts without the old verdict
	fresh := NewClient()
	manager.GetOrCreateHub("A").Register(fresh)
	select {
	case msg := <-fresh.send:
		t.Errorf("new room replayed %q", string(msg))
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubManager_CleanupForgetsIdleReplay(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	manager.Publish("IDLE", model.EventUpdateTime, []byte(`{"remainingSeconds":1}`))
	manager.Publish("BUSY", model.EventUpdateTime, []byte(`{"remainingSeconds":9}`))

	manager.CleanupEmptyHubs()
	manager.Publish("BUSY", model.EventUpdateTime, []byte(`{"remainingSeconds":8}`))
	manager.CleanupEmptyHubs()

	if _, ok := manager.latest["IDLE"]; ok {
		t.Error("replay of an idle room survived two cleanups")
	}
	if _, ok := manager.latest["BUSY"]; !ok {
		t.Error("replay of a ticking room was dropped")
	}
}

func TestHubManager_AttachReplacesHubClosedByJanitor(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.Close()

	stale := manager.GetOrCreateHub("A")
	manager.CleanupEmptyHubs()

	client := NewClient()
	hub, ok := manager.attach(stale, "A", client)
	if !ok {
		t.Fatal("attach failed after the janitor closed the hub")
	}
	if hub == stale {
		t.Error("attach registered with the closed hub")
	}
	if manager.GetHub("A") != hub {
		t.Error("replacement hub is not registered with the manager")
	}

	manager.Publish("A", model.EventUpdateTime, []byte(`{"remainingSeconds":7}`))
	select {
	case msg := <-client.send:
		if !strings.Contains(string(msg), `"remainingSeconds":7`) {
			t.Errorf("frame = %q", string(msg))
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("spectator on the replacement hub got no broadcast")
	}
}
