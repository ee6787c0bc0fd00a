package memory

import (
	"context"
	"sync"

	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/storage"
)

// DefaultHistoryLimit is the number of results kept when none is configured
const DefaultHistoryLimit = 100

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	// history is ordered oldest first
	history      []*model.GameResult
	latestByRoom map[model.RoomName]*model.GameResult
	historyLimit int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return NewWithLimit(DefaultHistoryLimit)
}

// NewWithLimit creates an in-memory storage keeping at most limit results in the history
func NewWithLimit(limit int) *Storage {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Storage{
		latestByRoom: make(map[model.RoomName]*model.GameResult),
		historyLimit: limit,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveResult(ctx context.Context, result *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := copyResult(result)
	s.history = append(s.history, copied)
	if over := len(s.history) - s.historyLimit; over > 0 {
		s.history = append([]*model.GameResult(nil), s.history[over:]...)
	}
	s.latestByRoom[result.RoomName] = copied
	return nil
}

func (s *Storage) GetLatestResult(ctx context.Context, room model.RoomName) (*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.latestByRoom[room]
	if !ok {
		return nil, model.ErrResultNotFound
	}
	return copyResult(result), nil
}

func (s *Storage) ListResults(ctx context.Context, limit int) ([]*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	results := make([]*model.GameResult, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(results) < limit; i-- {
		results = append(results, copyResult(s.history[i]))
	}
	return results, nil
}

func copyResult(r *model.GameResult) *model.GameResult {
	c := *r
	c.Players = append([]model.PlayerID(nil), r.Players...)
	return &c
}
