package scheduler

import "github.com/mcoot/colorclaim/internal/model"

// Transition is the outcome of applying one tick to a room
type Transition struct {
	// Update is broadcast to the room: the countdown after this tick and the phase it belonged to
	Update model.UpdateTimePayload

	From    model.RoomPhase
	To      model.RoomPhase
	Changed bool
}

// Advance applies one tick to the room's countdown. When the countdown reaches zero the
// room moves to its next phase exactly once:
//
//	waiting -> playing -> scoring -> closed
func Advance(room *model.Room, cfg Config) Transition {
	if room.IsLobby() || room.Phase == model.PhaseClosed {
		return Transition{From: room.Phase, To: room.Phase}
	}

	if room.RemainingSeconds > 0 {
		room.RemainingSeconds--
	}
	if cfg.StartWhenFull && room.Phase == model.PhaseWaiting && room.Count() >= model.MaxRoomPlayers {
		room.RemainingSeconds = 0
	}

	t := Transition{
		Update: model.UpdateTimePayload{
			RemainingSeconds: room.RemainingSeconds,
			Phase:            room.Phase,
		},
		From: room.Phase,
		To:   room.Phase,
	}
	if room.RemainingSeconds > 0 {
		return t
	}

	switch room.Phase {
	case model.PhaseWaiting:
		room.Phase = model.PhasePlaying
		room.RemainingSeconds = cfg.PlaySeconds
	case model.PhasePlaying:
		room.Phase = model.PhaseScoring
		room.RemainingSeconds = cfg.ScoreSeconds
	case model.PhaseScoring:
		room.Phase = model.PhaseClosed
		room.RemainingSeconds = 0
	}

	t.To = room.Phase
	t.Changed = true
	return t
}
