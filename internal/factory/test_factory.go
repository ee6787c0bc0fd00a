package factory

import (
	"time"

	"github.com/mcoot/colorclaim/internal/dependencies/mocks"
	"github.com/mcoot/colorclaim/internal/services/scheduler"
	"github.com/mcoot/colorclaim/internal/storage/memory"
	"github.com/mcoot/colorclaim/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDGenerator
}

// TestPhases are short phase durations for driving rooms through their lifecycle in tests
func TestPhases() scheduler.Config {
	return scheduler.Config{
		WaitSeconds:  3,
		PlaySeconds:  2,
		ScoreSeconds: 2,
		TickInterval: time.Second,
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDGenerator()

	app := newWithDependencies(store, mockClock, mockIDs, Config{Scheduler: TestPhases()}, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
