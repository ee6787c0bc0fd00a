package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/colorclaim/internal/dependencies/clock"
	"github.com/mcoot/colorclaim/internal/dependencies/idgen"
	"github.com/mcoot/colorclaim/internal/metrics"
	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/services/registry"
	"github.com/mcoot/colorclaim/internal/services/scheduler"
	"github.com/mcoot/colorclaim/internal/services/scoring"
	"github.com/mcoot/colorclaim/internal/storage"
)

const (
	commandBufferSize = 256
	resultSaveTimeout = 5 * time.Second
)

// Errors returned by the gateway entry points
var (
	ErrUnknownEvent     = errors.New("unknown event")
	ErrMalformedPayload = errors.New("malformed event payload")
	ErrStopped          = errors.New("gateway stopped")
)

// Transport delivers named events to connected players and room groups
type Transport interface {
	// Send delivers an event to a single player
	Send(to model.PlayerID, event model.EventName, payload any)
	// Broadcast delivers an event to every member of a group except the given player (if any)
	Broadcast(group model.RoomName, event model.EventName, payload any, except model.PlayerID)
	// Join adds a player to a group
	Join(id model.PlayerID, group model.RoomName)
	// Leave removes a player from a group
	Leave(id model.PlayerID, group model.RoomName)
	// Disband drops a group whose room was destroyed after its last member left
	Disband(group model.RoomName)
}

// Config holds configuration for the Gateway
type Config struct {
	Scheduler *scheduler.Scheduler
	Scoring   *scoring.Service
	Transport Transport
	Results   storage.Storage
	IDs       idgen.Generator
	Clock     clock.Clock
	Metrics   *metrics.Metrics // optional
	Logger    *slog.Logger
}

// Gateway is the single serialized event loop of the game server. Every registry
// mutation and every room timer tick is handled on the goroutine running Run;
// other goroutines only enqueue work.
type Gateway struct {
	registry  *registry.Registry
	scheduler *scheduler.Scheduler
	phases    scheduler.Config
	scoring   *scoring.Service
	transport Transport
	results   storage.Storage
	ids       idgen.Generator
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *slog.Logger

	commands chan func()
	done     chan struct{}
	stopOnce sync.Once
	saves    sync.WaitGroup
}

// New creates a Gateway and the registry it owns
func New(cfg Config) *Gateway {
	logger := cfg.Logger.With(slog.String("component", "gateway"))
	phases := cfg.Scheduler.Config()

	return &Gateway{
		registry: registry.New(
			registry.Config{WaitSeconds: phases.WaitSeconds},
			cfg.Scheduler,
			cfg.Clock,
			cfg.Logger,
		),
		scheduler: cfg.Scheduler,
		phases:    phases,
		scoring:   cfg.Scoring,
		transport: cfg.Transport,
		results:   cfg.Results,
		ids:       cfg.IDs,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
		logger:    logger,
		commands:  make(chan func(), commandBufferSize),
		done:      make(chan struct{}),
	}
}

// Run processes commands and timer ticks until ctx is cancelled
func (g *Gateway) Run(ctx context.Context) error {
	g.logger.Info("gateway started")
	defer func() {
		g.scheduler.StopAll()
		g.stopOnce.Do(func() { close(g.done) })
		g.saves.Wait()
		g.logger.Info("gateway stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-g.commands:
			fn()
		case tick := <-g.scheduler.Ticks():
			g.handleTick(tick)
		}
	}
}

// NewPlayerID generates an id for a new connection. Safe for concurrent use.
func (g *Gateway) NewPlayerID() model.PlayerID {
	return g.ids.NewPlayerID()
}

// Connect registers a new player session in the lobby.
// The transport must already be able to deliver to id.
func (g *Gateway) Connect(ctx context.Context, id model.PlayerID) error {
	return g.enqueue(ctx, func() { g.handleConnect(id) })
}

// Disconnect removes a player session. Repeated calls are harmless.
func (g *Gateway) Disconnect(ctx context.Context, id model.PlayerID) error {
	return g.enqueue(ctx, func() { g.handleDisconnect(id) })
}

// Dispatch decodes an inbound event and queues it for the loop.
// Decoding happens on the caller's goroutine.
func (g *Gateway) Dispatch(ctx context.Context, id model.PlayerID, event model.EventName, data json.RawMessage) error {
	var fn func()

	switch event {
	case model.EventCreateRoom, model.EventJoinRoom, model.EventMoveToLobby:
		name, err := decodeRoomName(data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, event, err)
		}
		switch event {
		case model.EventCreateRoom:
			fn = func() { g.handleCreateRoom(id, name) }
		case model.EventJoinRoom:
			fn = func() { g.handleJoinRoom(id, name) }
		default:
			fn = func() { g.handleMoveToLobby(id, name) }
		}

	case model.EventMovementUpdate:
		var state model.UntrustedPlayerState
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, event, err)
		}
		fn = func() { g.handleMovement(id, state) }

	case model.EventSendCanvas:
		var sub model.CanvasSubmission
		if err := json.Unmarshal(data, &sub); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, event, err)
		}
		fn = func() { g.handleCanvas(id, sub) }

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}

	return g.enqueue(ctx, fn)
}

// Rooms returns snapshots of every game room, sorted by name
func (g *Gateway) Rooms(ctx context.Context) ([]model.RoomSnapshot, error) {
	return query(ctx, g, func() ([]model.RoomSnapshot, error) {
		rooms := g.registry.Rooms()
		snapshots := make([]model.RoomSnapshot, len(rooms))
		for i, room := range rooms {
			snapshots[i] = room.Snapshot()
		}
		return snapshots, nil
	})
}

// Room returns a snapshot of one room, which may be the lobby
func (g *Gateway) Room(ctx context.Context, name model.RoomName) (model.RoomSnapshot, error) {
	return query(ctx, g, func() (model.RoomSnapshot, error) {
		room, err := g.registry.Room(name)
		if err != nil {
			return model.RoomSnapshot{}, err
		}
		return room.Snapshot(), nil
	})
}

func (g *Gateway) enqueue(ctx context.Context, fn func()) error {
	select {
	case <-g.done:
		return ErrStopped
	default:
	}

	select {
	case g.commands <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-g.done:
		return ErrStopped
	}
}

// query runs fn on the loop and waits for its result
func query[T any](ctx context.Context, g *Gateway, fn func() (T, error)) (T, error) {
	type reply struct {
		value T
		err   error
	}
	replies := make(chan reply, 1)

	var zero T
	if err := g.enqueue(ctx, func() {
		v, err := fn()
		replies <- reply{v, err}
	}); err != nil {
		return zero, err
	}

	select {
	case r := <-replies:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-g.done:
		return zero, ErrStopped
	}
}

// decodeRoomName accepts either a bare JSON string or {"roomName": "..."}
func decodeRoomName(data json.RawMessage) (model.RoomName, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return model.NormalizeRoomName(name), nil
	}
	var req model.RoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return "", err
	}
	return model.NormalizeRoomName(req.RoomName), nil
}
