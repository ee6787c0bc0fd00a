package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/colorclaim/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = NewWithLimit(3)
	s.ctx = context.Background()
}

func result(room string, winner model.Color, at time.Time) *model.GameResult {
	v := model.Verdict{Winner: winner}
	return &model.GameResult{
		RoomName: model.RoomName(room),
		Verdict:  v,
		Text:     v.Text(),
		Players:  []model.PlayerID{"p1", "p2"},
		ScoredAt: at,
	}
}

func (s *StorageSuite) TestSaveAndGetLatest() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.SaveResult(s.ctx, result("A", model.ColorRed, base)))
	s.Require().NoError(s.storage.SaveResult(s.ctx, result("A", model.ColorBlue, base.Add(time.Minute))))

	latest, err := s.storage.GetLatestResult(s.ctx, "A")

	s.Require().NoError(err)
	s.Equal(model.ColorBlue, latest.Verdict.Winner)
	s.Equal("Blue Wins", latest.Text)
}

func (s *StorageSuite) TestGetLatestNotFound() {
	_, err := s.storage.GetLatestResult(s.ctx, "missing")
	s.ErrorIs(err, model.ErrResultNotFound)
}

func (s *StorageSuite) TestListNewestFirst() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		room := fmt.Sprintf("room-%d", i)
		s.Require().NoError(s.storage.SaveResult(s.ctx, result(room, model.ColorGreen, base.Add(time.Duration(i)*time.Minute))))
	}

	results, err := s.storage.ListResults(s.ctx, 2)

	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(model.RoomName("room-2"), results[0].RoomName)
	s.Equal(model.RoomName("room-1"), results[1].RoomName)
}

func (s *StorageSuite) TestHistoryIsBounded() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		room := fmt.Sprintf("room-%d", i)
		s.Require().NoError(s.storage.SaveResult(s.ctx, result(room, model.ColorGreen, base)))
	}

	results, err := s.storage.ListResults(s.ctx, 0)

	s.Require().NoError(err)
	s.Len(results, 3)
	s.Equal(model.RoomName("room-4"), results[0].RoomName)
	s.Equal(model.RoomName("room-2"), results[2].RoomName)

	// Latest-by-room entries outlive the bounded history
	_, err = s.storage.GetLatestResult(s.ctx, "room-0")
	s.NoError(err)
}

func (s *StorageSuite) TestStoredResultsAreCopies() {
	r := result("A", model.ColorRed, time.Now())
	s.Require().NoError(s.storage.SaveResult(s.ctx, r))

	r.Players[0] = "mutated"
	latest, err := s.storage.GetLatestResult(s.ctx, "A")

	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), latest.Players[0])
}
