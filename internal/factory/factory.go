package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mcoot/colorclaim/internal/api"
	"github.com/mcoot/colorclaim/internal/dependencies/clock"
	"github.com/mcoot/colorclaim/internal/dependencies/idgen"
	"github.com/mcoot/colorclaim/internal/metrics"
	"github.com/mcoot/colorclaim/internal/services/gateway"
	"github.com/mcoot/colorclaim/internal/services/scheduler"
	"github.com/mcoot/colorclaim/internal/services/scoring"
	"github.com/mcoot/colorclaim/internal/storage"
	"github.com/mcoot/colorclaim/internal/storage/memory"
	redisstorage "github.com/mcoot/colorclaim/internal/storage/redis"
	"github.com/mcoot/colorclaim/internal/transport/ws"
	"github.com/mcoot/colorclaim/internal/web"
	"github.com/mcoot/colorclaim/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

const sseJanitorInterval = time.Minute

// App contains all wired application components
type App struct {
	// Storage holds scored game results
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   idgen.Generator

	Metrics        *metrics.Metrics
	Scheduler      *scheduler.Scheduler
	ScoringService *scoring.Service
	Gateway        *gateway.Gateway
	HubManager     *sse.HubManager
	Hub            *ws.Hub
	WSHandler      *ws.Handler

	logger *slog.Logger
	wg     sync.WaitGroup
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the result storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Scheduler holds phase durations. Zero value means scheduler.DefaultConfig().
	Scheduler scheduler.Config
	// WS holds connection limits. Zero value means ws.DefaultConfig().
	WS ws.Config
	// IDSeed seeds player id hashing. Zero means idgen.DefaultSeed.
	IDSeed uint64
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	seed := cfg.IDSeed
	if seed == 0 {
		seed = idgen.DefaultSeed
	}

	clk := clock.New()
	ids := idgen.New(seed, clk)

	return newWithDependencies(store, clk, ids, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, ids idgen.Generator, cfg Config, logger *slog.Logger) *App {
	schedCfg := cfg.Scheduler
	if schedCfg == (scheduler.Config{}) {
		schedCfg = scheduler.DefaultConfig()
	}
	wsCfg := cfg.WS
	if wsCfg == (ws.Config{}) {
		wsCfg = ws.DefaultConfig()
	}

	m := metrics.New()
	sched := scheduler.New(schedCfg, clk, logger)
	scoringService := scoring.New()
	hubManager := sse.NewHubManager(logger)
	hub := ws.NewHub(hubManager, m, logger)

	gw := gateway.New(gateway.Config{
		Scheduler: sched,
		Scoring:   scoringService,
		Transport: hub,
		Results:   store,
		IDs:       ids,
		Clock:     clk,
		Metrics:   m,
		Logger:    logger,
	})

	return &App{
		Storage:        store,
		Clock:          clk,
		IDs:            ids,
		Metrics:        m,
		Scheduler:      sched,
		ScoringService: scoringService,
		Gateway:        gw,
		HubManager:     hubManager,
		Hub:            hub,
		WSHandler:      ws.NewHandler(hub, gw, wsCfg, clk, m, logger),
		logger:         logger,
	}
}

// Start runs the gateway loop and the spectator hub janitor until ctx is cancelled
func (a *App) Start(ctx context.Context) {
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		if err := a.Gateway.Run(ctx); err != nil {
			a.logger.Error("gateway stopped with error", slog.Any("error", err))
		}
	}()
	go func() {
		defer a.wg.Done()
		a.HubManager.RunJanitor(ctx, a.Clock, sseJanitorInterval)
	}()
}

// Wait blocks until everything started by Start has stopped, then releases resources
func (a *App) Wait() {
	a.wg.Wait()
	a.HubManager.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("failed to close storage", slog.Any("error", err))
		}
	}
}

// Handler combines the API and web routers
func (a *App) Handler(staticDir string) http.Handler {
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:  a.logger,
		Rooms:   a.Gateway,
		Results: a.Storage,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:     a.logger,
		WebSocket:  a.WSHandler,
		Rooms:      a.Gateway,
		HubManager: a.HubManager,
		Metrics:    a.Metrics,
		StaticDir:  staticDir,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)
	return mux
}
