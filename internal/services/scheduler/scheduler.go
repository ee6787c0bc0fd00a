package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/colorclaim/internal/dependencies/clock"
	"github.com/mcoot/colorclaim/internal/model"
)

const tickBufferSize = 64

// Config holds phase durations and timer settings
type Config struct {
	WaitSeconds   int
	PlaySeconds   int
	ScoreSeconds  int
	StartWhenFull bool
	TickInterval  time.Duration
}

// DefaultConfig returns the standard phase durations
func DefaultConfig() Config {
	return Config{
		WaitSeconds:   30,
		PlaySeconds:   60,
		ScoreSeconds:  30,
		StartWhenFull: false,
		TickInterval:  time.Second,
	}
}

// Tick is one timer firing for one room. TimerID identifies the timer instance that
// produced it, so ticks from a cancelled timer can be told apart from a restarted one.
type Tick struct {
	Room    model.RoomName
	TimerID uint64
	At      time.Time
}

type timer struct {
	id     uint64
	ticker clock.Ticker
	stop   chan struct{}
}

// Scheduler runs one independent countdown timer per active room and delivers
// their ticks on a single channel. It never touches room state.
type Scheduler struct {
	mu     sync.Mutex
	timers map[model.RoomName]*timer
	nextID uint64

	ticks  chan Tick
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger
}

// New creates a Scheduler
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &Scheduler{
		timers: make(map[model.RoomName]*timer),
		ticks:  make(chan Tick, tickBufferSize),
		clock:  clk,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "scheduler")),
	}
}

// Config returns the scheduler's phase configuration
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Ticks returns the channel on which all room ticks are delivered
func (s *Scheduler) Ticks() <-chan Tick {
	return s.ticks
}

// Start begins the countdown timer for a room, replacing any existing one
func (s *Scheduler) Start(name model.RoomName) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[name]; ok {
		close(existing.stop)
	}

	s.nextID++
	t := &timer{
		id:     s.nextID,
		ticker: s.clock.NewTicker(s.cfg.TickInterval),
		stop:   make(chan struct{}),
	}
	s.timers[name] = t
	go s.run(name, t)

	s.logger.Debug("room timer started",
		slog.String("room", string(name)),
		slog.Uint64("timer_id", t.id))
}

// Stop cancels a room's timer. It does not wait for the timer goroutine to exit;
// ticks it already produced are rejected by IsCurrent.
func (s *Scheduler) Stop(name model.RoomName) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[name]
	if !ok {
		return
	}
	close(t.stop)
	delete(s.timers, name)

	s.logger.Debug("room timer stopped",
		slog.String("room", string(name)),
		slog.Uint64("timer_id", t.id))
}

// StopAll cancels every timer
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, t := range s.timers {
		close(t.stop)
		delete(s.timers, name)
	}
}

// Current returns the id of the room's live timer
func (s *Scheduler) Current(name model.RoomName) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[name]
	if !ok {
		return 0, false
	}
	return t.id, true
}

// IsCurrent reports whether the tick came from the room's live timer
func (s *Scheduler) IsCurrent(tick Tick) bool {
	id, ok := s.Current(tick.Room)
	return ok && id == tick.TimerID
}

// Active returns the number of live timers
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) run(name model.RoomName, t *timer) {
	defer t.ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case at := <-t.ticker.C():
			select {
			case <-t.stop:
				return
			default:
			}
			select {
			case s.ticks <- Tick{Room: name, TimerID: t.id, At: at}:
			case <-t.stop:
				return
			}
		}
	}
}
