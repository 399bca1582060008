package pagination

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/remindme/internal/common/uuid/mocks"
	"github.com/KirkDiggler/remindme/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr       *miniredis.Miniredis
	client   *redis.Client
	mockUUID *mocks.MockUUID
	repo     Repository
	ctx      context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	s.mockUUID = mocks.NewMockUUID(gomock.NewController(s.T()))

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
		UUID:        s.mockUUID,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestSaveAssignsIDAndGet() {
	s.mockUUID.EXPECT().NewUUID().Return("session-1")

	saved, err := s.repo.Save(s.ctx, &SaveInput{Session: &models.PageSession{
		OwnerID: 42,
		Pages: []models.Page{
			{Title: "Reminders", Fields: []models.PageField{{Name: "#1", Value: "stretch"}}},
		},
	}})
	s.Require().NoError(err)
	s.Equal("session-1", saved.ID)

	got, err := s.repo.Get(s.ctx, &GetInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Equal(saved, got)
}

func (s *RedisRepositoryTestSuite) TestGetExtendsTTL() {
	s.mockUUID.EXPECT().NewUUID().Return("session-1")

	_, err := s.repo.Save(s.ctx, &SaveInput{Session: &models.PageSession{OwnerID: 1}})
	s.Require().NoError(err)

	s.mr.FastForward(40 * time.Second)
	_, err = s.repo.Get(s.ctx, &GetInput{SessionID: "session-1"})
	s.Require().NoError(err)

	s.mr.FastForward(40 * time.Second)
	_, err = s.repo.Get(s.ctx, &GetInput{SessionID: "session-1"})
	s.Require().NoError(err)

	s.mr.FastForward(DefaultTTL + time.Second)
	_, err = s.repo.Get(s.ctx, &GetInput{SessionID: "session-1"})
	s.ErrorIs(err, ErrSessionNotFound)
}
