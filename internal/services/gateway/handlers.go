package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/services/registry"
	"github.com/mcoot/colorclaim/internal/services/scheduler"
)

func (g *Gateway) handleConnect(id model.PlayerID) {
	p := g.registry.Connect(id)
	g.transport.Join(id, model.LobbyName)

	g.transport.Send(id, model.EventJoined, model.JoinedPayload{
		Player: *p,
		Lobby:  g.registry.Lobby().Snapshot(),
	})
	g.transport.Broadcast(model.LobbyName, model.EventUpdatedMovement, *p, id)

	g.logger.Info("player connected", slog.String("player_id", string(id)))
	g.observeOccupancy()
}

func (g *Gateway) handleDisconnect(id model.PlayerID) {
	move, ok := g.registry.RemovePlayer(id)
	if !ok {
		return
	}

	if move.From != nil {
		g.leave(id, move.From.Name, move.FromDestroyed)
	}

	g.logger.Info("player disconnected", slog.String("player_id", string(id)))
	g.observeOccupancy()
}

func (g *Gateway) handleCreateRoom(id model.PlayerID, name model.RoomName) {
	move, err := g.registry.CreateRoom(name, id)
	if err != nil {
		g.reject(id, name, err)
		return
	}
	g.applyMove(id, move)
}

func (g *Gateway) handleJoinRoom(id model.PlayerID, name model.RoomName) {
	move, err := g.registry.JoinRoom(name, id)
	if err != nil {
		g.reject(id, name, err)
		return
	}
	g.applyMove(id, move)
}

func (g *Gateway) handleMoveToLobby(id model.PlayerID, name model.RoomName) {
	move, err := g.registry.MoveToLobby(name, id)
	if err != nil {
		g.reject(id, name, err)
		return
	}
	g.applyMove(id, move)
}

func (g *Gateway) handleMovement(id model.PlayerID, state model.UntrustedPlayerState) {
	p, err := g.registry.Player(id)
	if err != nil {
		g.logger.Debug("movement from unknown player", slog.String("player_id", string(id)))
		return
	}
	state.Apply(p, g.clock.Now())
	g.transport.Broadcast(p.RoomName, model.EventUpdatedMovement, *p, id)
}

func (g *Gateway) handleCanvas(id model.PlayerID, sub model.CanvasSubmission) {
	name := model.NormalizeRoomName(sub.RoomName)
	logger := g.logger.With(
		slog.String("room", string(name)),
		slog.String("player_id", string(id)))

	room, err := g.registry.Room(name)
	if err != nil {
		logger.Debug("canvas for unknown room ignored")
		return
	}
	if room.Phase != model.PhaseScoring {
		logger.Debug("canvas outside scoring phase ignored", slog.String("phase", string(room.Phase)))
		return
	}
	if room.Scored {
		logger.Debug("canvas for already scored room ignored")
		return
	}

	verdict, err := g.scoring.Score(sub.Pixels, sub.PixelCount)
	if err != nil {
		g.reject(id, name, err)
		return
	}
	room.Scored = true

	result := &model.GameResult{
		RoomName: name,
		Verdict:  verdict,
		Text:     verdict.Text(),
		Players:  room.MemberIDs(),
		ScoredAt: g.clock.Now(),
	}

	g.transport.Broadcast(name, model.EventResults, model.ResultsPayload{
		Text:    result.Text,
		Verdict: verdict,
	}, "")
	g.metrics.ObserveVerdict(verdict)

	logger.Info("room scored",
		slog.String("winner", string(verdict.Winner)),
		slog.Int("purple", verdict.Counts.Purple),
		slog.Int("red", verdict.Counts.Red),
		slog.Int("green", verdict.Counts.Green),
		slog.Int("blue", verdict.Counts.Blue))

	g.saveResult(result)
}

func (g *Gateway) handleTick(tick scheduler.Tick) {
	if !g.scheduler.IsCurrent(tick) {
		g.logger.Debug("stale tick discarded",
			slog.String("room", string(tick.Room)),
			slog.Uint64("timer_id", tick.TimerID))
		return
	}

	room, err := g.registry.Room(tick.Room)
	if err != nil {
		g.scheduler.Stop(tick.Room)
		return
	}

	tr := scheduler.Advance(room, g.phases)
	g.transport.Broadcast(room.Name, model.EventUpdateTime, tr.Update, "")
	if !tr.Changed {
		return
	}

	g.metrics.ObserveTransition(tr.From, tr.To)
	g.logger.Info("room phase changed",
		slog.String("room", string(room.Name)),
		slog.String("from", string(tr.From)),
		slog.String("to", string(tr.To)))

	switch tr.To {
	case model.PhaseScoring:
		g.transport.Broadcast(room.Name, model.EventScoreRequest, model.ScoreRequestPayload{RoomName: room.Name}, "")
	case model.PhaseClosed:
		g.closeRoom(room.Name)
	}
}

// closeRoom tells the members to leave, then returns them to the lobby
func (g *Gateway) closeRoom(name model.RoomName) {
	g.transport.Broadcast(name, model.EventForceMoveToLobby, model.RoomRequest{RoomName: string(name)}, "")

	moved, err := g.registry.CloseRoom(name)
	if err != nil {
		g.logger.Error("failed to close room", slog.String("room", string(name)), slog.Any("error", err))
		return
	}

	lobby := g.registry.Lobby()
	for _, p := range moved {
		g.transport.Leave(p.ID, name)
		g.transport.Join(p.ID, model.LobbyName)
	}
	snapshot := lobby.Snapshot()
	for _, p := range moved {
		g.transport.Send(p.ID, model.EventRoomJoined, snapshot)
		g.transport.Broadcast(model.LobbyName, model.EventUpdatedMovement, *p, p.ID)
	}
	g.observeOccupancy()
}

// applyMove mirrors a registry move onto transport groups and tells the requester
// which room it is now in
func (g *Gateway) applyMove(id model.PlayerID, move registry.Move) {
	if move.Changed() {
		from := move.From.Name
		g.leave(id, from, move.FromDestroyed)
		g.transport.Join(id, move.To.Name)

		if p, err := g.registry.Player(id); err == nil {
			g.transport.Broadcast(move.To.Name, model.EventUpdatedMovement, *p, id)
		}

		g.logger.Info("player moved",
			slog.String("player_id", string(id)),
			slog.String("from", string(from)),
			slog.String("to", string(move.To.Name)))
	}

	g.transport.Send(id, model.EventRoomJoined, move.To.Snapshot())
	g.observeOccupancy()
}

// leave takes a player out of a group. The remaining members hear about it, or, when the
// player was the last one and the room is gone, the group itself is disbanded.
func (g *Gateway) leave(id model.PlayerID, group model.RoomName, destroyed bool) {
	g.transport.Leave(id, group)
	if destroyed {
		g.transport.Disband(group)
		return
	}
	g.transport.Broadcast(group, model.EventLeft, model.LeftPayload{PlayerID: id}, id)
}

func (g *Gateway) reject(id model.PlayerID, name model.RoomName, err error) {
	g.metrics.ObserveRejection(rejectionReason(err))
	g.logger.Info("request rejected",
		slog.String("player_id", string(id)),
		slog.String("room", string(name)),
		slog.Any("error", err))

	if errors.Is(err, model.ErrPlayerNotFound) {
		return
	}
	g.transport.Send(id, model.EventRoomError, model.RoomErrorPayload{Message: rejectionMessage(name, err)})
}

func (g *Gateway) saveResult(result *model.GameResult) {
	if g.results == nil {
		return
	}

	g.saves.Add(1)
	go func() {
		defer g.saves.Done()

		ctx, cancel := context.WithTimeout(context.Background(), resultSaveTimeout)
		defer cancel()

		if err := g.results.SaveResult(ctx, result); err != nil {
			g.logger.Error("failed to save result",
				slog.String("room", string(result.RoomName)),
				slog.Any("error", err))
		}
	}()
}

func (g *Gateway) observeOccupancy() {
	g.metrics.SetOccupancy(g.registry.PlayerCount(), g.registry.RoomCount())
}

func rejectionMessage(name model.RoomName, err error) string {
	switch {
	case errors.Is(err, model.ErrRoomExists):
		return fmt.Sprintf("%s already exists", name)
	case errors.Is(err, model.ErrRoomNotFound):
		return fmt.Sprintf("%s does not exist", name)
	case errors.Is(err, model.ErrRoomFull):
		return fmt.Sprintf("%s is full", name)
	case errors.Is(err, model.ErrRoomNotAccepting):
		return fmt.Sprintf("%s is not accepting more players", name)
	case errors.Is(err, model.ErrInvalidRoomName):
		return "room name must not be empty"
	case errors.Is(err, model.ErrInvalidBuffer):
		return "invalid canvas submission"
	default:
		return "request failed"
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomExists):
		return "exists"
	case errors.Is(err, model.ErrRoomNotFound):
		return "not_found"
	case errors.Is(err, model.ErrRoomFull):
		return "full"
	case errors.Is(err, model.ErrRoomNotAccepting):
		return "not_accepting"
	case errors.Is(err, model.ErrInvalidRoomName):
		return "invalid_name"
	case errors.Is(err, model.ErrInvalidBuffer):
		return "invalid_buffer"
	default:
		return "other"
	}
}
