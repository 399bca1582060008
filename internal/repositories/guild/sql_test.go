package guild

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/remindme/internal/database"
	"github.com/KirkDiggler/remindme/internal/repositories/reminder"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

type SQLRepositoryTestSuite struct {
	suite.Suite
	repo      *sqlRepository
	reminders reminder.Repository
	ctx       context.Context
}

func (s *SQLRepositoryTestSuite) SetupTest() {
	db := database.SetupTestDB(s.T())
	s.ctx = context.Background()

	var err error
	s.repo, err = NewSQL(&Config{DB: db})
	s.Require().NoError(err)

	s.reminders, err = reminder.NewSQL(&reminder.Config{DB: db})
	s.Require().NoError(err)
}

func (s *SQLRepositoryTestSuite) TestAddIsIdempotent() {
	first, err := s.repo.Add(s.ctx, &AddInput{Snowflake: 10})
	s.Require().NoError(err)
	s.Equal(snowflake.ID(10), first.Snowflake)
	s.Zero(first.RemindersCount)
	s.False(first.JoinedAt.IsZero())

	second, err := s.repo.Add(s.ctx, &AddInput{Snowflake: 10})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	list, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list.Guilds, 1)
}

func (s *SQLRepositoryTestSuite) TestExistsAndGet() {
	ok, err := s.repo.Exists(s.ctx, &ExistsInput{Snowflake: 10})
	s.Require().NoError(err)
	s.False(ok)

	g, err := s.repo.Get(s.ctx, &GetInput{Snowflake: 10})
	s.Require().NoError(err)
	s.Nil(g)

	_, err = s.reminders.Add(s.ctx, &reminder.AddInput{
		GuildID: 10, ChannelID: 1, AuthorID: 2, ExpiresAt: time.Now().Add(time.Hour), Content: "x",
	})
	s.Require().NoError(err)

	ok, err = s.repo.Exists(s.ctx, &ExistsInput{Snowflake: 10})
	s.Require().NoError(err)
	s.True(ok)

	g, err = s.repo.Get(s.ctx, &GetInput{Snowflake: 10})
	s.Require().NoError(err)
	s.Require().NotNil(g)
	s.Equal(int64(1), g.RemindersCount)
}

func (s *SQLRepositoryTestSuite) TestRemoveCascadesToReminders() {
	_, err := s.reminders.Add(s.ctx, &reminder.AddInput{
		GuildID: 10, ChannelID: 1, AuthorID: 2, ExpiresAt: time.Now().Add(time.Hour), Content: "x",
	})
	s.Require().NoError(err)

	out, err := s.repo.Remove(s.ctx, &RemoveInput{Snowflake: 10})
	s.Require().NoError(err)
	s.True(out.Removed)

	list, err := s.reminders.List(s.ctx, &reminder.ListInput{})
	s.Require().NoError(err)
	s.Empty(list.Reminders)

	out, err = s.repo.Remove(s.ctx, &RemoveInput{Snowflake: 10})
	s.Require().NoError(err)
	s.False(out.Removed)
}

func TestSQLRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLRepositoryTestSuite))
}
