package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveResult(ctx context.Context, result *model.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result for %s: %w", result.RoomName, err)
	}

	// history and the per-room latest key move together
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, resultHistoryKey(), data)
	if s.cfg.HistoryLimit > 0 {
		pipe.LTrim(ctx, resultHistoryKey(), 0, int64(s.cfg.HistoryLimit-1))
	}
	pipe.Set(ctx, latestResultKey(result.RoomName), data, s.cfg.ResultTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetLatestResult(ctx context.Context, room model.RoomName) (*model.GameResult, error) {
	data, err := s.client.Get(ctx, latestResultKey(room)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrResultNotFound
		}
		return nil, err
	}

	var result model.GameResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Storage) ListResults(ctx context.Context, limit int) ([]*model.GameResult, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	entries, err := s.client.LRange(ctx, resultHistoryKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*model.GameResult, 0, len(entries))
	for _, entry := range entries {
		var result model.GameResult
		if err := json.Unmarshal([]byte(entry), &result); err != nil {
			return nil, err
		}
		results = append(results, &result)
	}
	return results, nil
}
