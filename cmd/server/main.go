package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/mcoot/colorclaim/internal/api"
	"github.com/mcoot/colorclaim/internal/factory"
	"github.com/mcoot/colorclaim/internal/services/scheduler"
	redisstorage "github.com/mcoot/colorclaim/internal/storage/redis"
	"github.com/mcoot/colorclaim/internal/transport/ws"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	cfg, serverConfig, err := configFromEnv()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg.Logger = logger

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	appCtx, stopApp := context.WithCancel(context.Background())
	app.Start(appCtx)

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = findStaticDir()
	}

	server := api.NewServer(app.Handler(staticDir), serverConfig, logger)
	// Shutdown waits for neither hijacked sockets nor open event streams
	server.OnShutdown(func() {
		app.Hub.CloseAll("server shutting down")
		app.HubManager.Close()
	})

	if err := server.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		stopApp()
		app.Wait()
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.Int("wait_seconds", cfg.Scheduler.WaitSeconds),
		slog.Int("play_seconds", cfg.Scheduler.PlaySeconds),
		slog.Int("score_seconds", cfg.Scheduler.ScoreSeconds))

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	cancel()
	stopApp()
	app.Wait()

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// configFromEnv builds the factory and HTTP server configuration from environment variables
func configFromEnv() (factory.Config, api.ServerConfig, error) {
	cfg := factory.Config{
		StorageType: os.Getenv("STORAGE_TYPE"),
		Scheduler:   scheduler.DefaultConfig(),
		WS:          ws.DefaultConfig(),
	}
	serverConfig := api.DefaultServerConfig()

	if cfg.StorageType == "" {
		cfg.StorageType = factory.StorageTypeMemory
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, serverConfig, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &serverConfig.Port},
		{"WAIT_SECONDS", &cfg.Scheduler.WaitSeconds},
		{"PLAY_SECONDS", &cfg.Scheduler.PlaySeconds},
		{"SCORE_SECONDS", &cfg.Scheduler.ScoreSeconds},
		{"WS_BURST", &cfg.WS.Burst},
	}
	for _, v := range ints {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return cfg, serverConfig, fmt.Errorf("%s must be a positive integer, got %q", v.key, raw)
		}
		*v.dst = n
	}

	if raw := os.Getenv("WS_MESSAGES_PER_SECOND"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate <= 0 {
			return cfg, serverConfig, fmt.Errorf("WS_MESSAGES_PER_SECOND must be a positive number, got %q", raw)
		}
		cfg.WS.MessagesPerSecond = rate
	}

	if raw := os.Getenv("START_WHEN_FULL"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, serverConfig, fmt.Errorf("START_WHEN_FULL must be a boolean, got %q", raw)
		}
		cfg.Scheduler.StartWhenFull = b
	}

	if raw := os.Getenv("ID_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return cfg, serverConfig, fmt.Errorf("ID_SEED must be an unsigned integer, got %q", raw)
		}
		cfg.IDSeed = seed
	}

	return cfg, serverConfig, nil
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	// Try common locations
	candidates := []string{
		"internal/web/static",
		"./internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	// No static directory; the page renders without the client bundle
	return ""
}
