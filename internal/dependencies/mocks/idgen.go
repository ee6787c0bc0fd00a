package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/colorclaim/internal/dependencies/idgen"
	"github.com/mcoot/colorclaim/internal/model"
)

// MockIDGenerator is a mock implementation of Generator for testing
type MockIDGenerator struct {
	mu sync.Mutex

	// Results is a queue of ids to return from NewPlayerID
	Results []model.PlayerID
	index   int
	issued  int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a new MockIDGenerator
func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

// NewPlayerID returns the next queued id, or "player-N" once the queue is exhausted
func (g *MockIDGenerator) NewPlayerID() model.PlayerID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	if g.index >= len(g.Results) {
		return model.PlayerID(fmt.Sprintf("player-%d", g.issued))
	}
	result := g.Results[g.index]
	g.index++
	return result
}

// Queue adds ids to the result queue
func (g *MockIDGenerator) Queue(ids ...model.PlayerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Results = append(g.Results, ids...)
}

// Reset clears all queued results
func (g *MockIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Results = nil
	g.index = 0
	g.issued = 0
}
