package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/colorclaim/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.ResultTTL = time.Hour
	cfg.HistoryLimit = 3

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func result(room string, winner model.Color) *model.GameResult {
	v := model.Verdict{Winner: winner, Counts: model.ColorCounts{Red: 5, Blue: 3}}
	return &model.GameResult{
		RoomName: model.RoomName(room),
		Verdict:  v,
		Text:     v.Text(),
		Players:  []model.PlayerID{"p1", "p2"},
		ScoredAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *StorageSuite) TestSaveAndGetLatest() {
	err := s.storage.SaveResult(s.ctx, result("A", model.ColorRed))
	s.Require().NoError(err)

	latest, err := s.storage.GetLatestResult(s.ctx, "A")

	s.Require().NoError(err)
	s.Equal(model.ColorRed, latest.Verdict.Winner)
	s.Equal(5, latest.Verdict.Counts.Red)
	s.Equal("Red Wins", latest.Text)
	s.Equal([]model.PlayerID{"p1", "p2"}, latest.Players)
}

func (s *StorageSuite) TestGetLatestNotFound() {
	_, err := s.storage.GetLatestResult(s.ctx, "missing")
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *StorageSuite) TestLatestResultExpires() {
	s.Require().NoError(s.storage.SaveResult(s.ctx, result("A", model.ColorRed)))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetLatestResult(s.ctx, "A")
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *StorageSuite) TestListNewestFirstAndTrimmed() {
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.storage.SaveResult(s.ctx, result(fmt.Sprintf("room-%d", i), model.ColorGreen)))
	}

	all, err := s.storage.ListResults(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(model.RoomName("room-4"), all[0].RoomName)
	s.Equal(model.RoomName("room-2"), all[2].RoomName)

	two, err := s.storage.ListResults(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(two, 2)
}

func (s *StorageSuite) TestListEmpty() {
	results, err := s.storage.ListResults(s.ctx, 10)

	s.Require().NoError(err)
	s.Empty(results)
}
