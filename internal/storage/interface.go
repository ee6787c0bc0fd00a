package storage

import (
	"context"

	"github.com/mcoot/colorclaim/internal/model"
)

// Storage defines the interface for the game result history.
// Room state is never stored; only finished verdicts are.
type Storage interface {
	// SaveResult appends a result to the history and records it as the room's latest
	SaveResult(ctx context.Context, result *model.GameResult) error

	// GetLatestResult returns the most recent result for a room name
	GetLatestResult(ctx context.Context, room model.RoomName) (*model.GameResult, error)

	// ListResults returns up to limit results, newest first
	ListResults(ctx context.Context, limit int) ([]*model.GameResult, error)
}
