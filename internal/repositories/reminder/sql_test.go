package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/remindme/internal/database"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

type SQLRepositoryTestSuite struct {
	suite.Suite
	repo *sqlRepository
	ctx  context.Context
	loc  *time.Location
	now  time.Time
}

func (s *SQLRepositoryTestSuite) SetupTest() {
	db := database.SetupTestDB(s.T())

	s.loc = time.FixedZone("UTC+02:00", 2*60*60)
	s.now = time.Date(2024, time.June, 1, 12, 0, 0, 0, s.loc)
	s.ctx = context.Background()

	var err error
	s.repo, err = NewSQL(&Config{DB: db, Location: s.loc})
	s.Require().NoError(err)
}

func (s *SQLRepositoryTestSuite) add(guild snowflake.ID, author snowflake.ID, in time.Duration) int64 {
	r, err := s.repo.Add(s.ctx, &AddInput{
		GuildID:   guild,
		ChannelID: 300,
		AuthorID:  author,
		ExpiresAt: s.now.Add(in),
		Content:   "stretch",
	})
	s.Require().NoError(err)
	return r.ReminderNumber
}

func (s *SQLRepositoryTestSuite) TestAddAndGet() {
	created, err := s.repo.Add(s.ctx, &AddInput{
		GuildID:   100,
		ChannelID: 300,
		AuthorID:  200,
		ExpiresAt: s.now.Add(time.Hour),
		Content:   "drink water",
	})
	s.Require().NoError(err)
	s.Equal(int64(1), created.ReminderNumber)
	s.NotZero(created.ID)

	got, err := s.repo.Get(s.ctx, &GetInput{ID: created.ID})
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(snowflake.ID(100), got.GuildID)
	s.Equal(snowflake.ID(300), got.ChannelID)
	s.Equal(snowflake.ID(200), got.AuthorID)
	s.Equal("drink water", got.Content)
	s.True(s.now.Add(time.Hour).Equal(got.ExpiresAt))
	s.Equal(s.loc, got.ExpiresAt.Location())

	byCode, err := s.repo.GetByCode(s.ctx, &GetByCodeInput{GuildID: 100, Code: 1})
	s.Require().NoError(err)
	s.Require().NotNil(byCode)
	s.Equal(created.ID, byCode.ID)
}

func (s *SQLRepositoryTestSuite) TestGetAbsent() {
	got, err := s.repo.Get(s.ctx, &GetInput{ID: 42})
	s.NoError(err)
	s.Nil(got)

	got, err = s.repo.GetByCode(s.ctx, &GetByCodeInput{GuildID: 100, Code: 1})
	s.NoError(err)
	s.Nil(got)
}

func (s *SQLRepositoryTestSuite) TestNumbersArePerGuildAndNeverReused() {
	s.Equal(int64(1), s.add(100, 1, time.Hour))
	s.Equal(int64(2), s.add(100, 1, time.Hour))
	s.Equal(int64(1), s.add(101, 1, time.Hour))

	second, err := s.repo.GetByCode(s.ctx, &GetByCodeInput{GuildID: 100, Code: 2})
	s.Require().NoError(err)
	_, err = s.repo.Remove(s.ctx, &RemoveInput{ID: second.ID})
	s.Require().NoError(err)

	s.Equal(int64(3), s.add(100, 1, time.Hour))
}

func (s *SQLRepositoryTestSuite) TestConcurrentAddYieldsPermutation() {
	const existing, n = 3, 25
	for i := 0; i < existing; i++ {
		s.add(100, 1, time.Hour)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int64
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := s.repo.Add(s.ctx, &AddInput{
				GuildID:   100,
				ChannelID: 300,
				AuthorID:  2,
				ExpiresAt: s.now.Add(time.Hour),
				Content:   "concurrent",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, r.ReminderNumber)
		}()
	}
	wg.Wait()

	s.Require().Empty(errs)
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	want := make([]int64, 0, n)
	for i := existing + 1; i <= existing+n; i++ {
		want = append(want, int64(i))
	}
	s.Equal(want, numbers)
}

func (s *SQLRepositoryTestSuite) TestRemoveIsIdempotent() {
	created, err := s.repo.Add(s.ctx, &AddInput{GuildID: 100, ChannelID: 1, AuthorID: 2, ExpiresAt: s.now, Content: "x"})
	s.Require().NoError(err)

	removed, err := s.repo.Remove(s.ctx, &RemoveInput{ID: created.ID})
	s.Require().NoError(err)
	s.Require().NotNil(removed)
	s.Equal(created.ID, removed.ID)
	s.Equal("x", removed.Content)

	removed, err = s.repo.Remove(s.ctx, &RemoveInput{ID: created.ID})
	s.NoError(err)
	s.Nil(removed)

	got, err := s.repo.Get(s.ctx, &GetInput{ID: created.ID})
	s.NoError(err)
	s.Nil(got)
}

func (s *SQLRepositoryTestSuite) TestRemoveExpired() {
	s.add(100, 1, -time.Hour)
	s.add(100, 1, 0)
	s.add(100, 1, time.Hour)
	s.add(101, 1, -time.Minute)

	out, err := s.repo.RemoveExpired(s.ctx, &RemoveExpiredInput{Now: s.now})
	s.Require().NoError(err)
	s.Equal(int64(3), out.Count)

	list, err := s.repo.List(s.ctx, &ListInput{})
	s.Require().NoError(err)
	s.Require().Len(list.Reminders, 1)
	s.Equal(int64(3), list.Reminders[0].ReminderNumber)
	for _, r := range list.Reminders {
		s.True(r.ExpiresAt.After(s.now))
	}
}

func (s *SQLRepositoryTestSuite) TestListFilters() {
	s.add(100, 1, time.Hour)
	s.add(100, 2, time.Hour)
	s.add(100, 1, time.Hour)
	s.add(101, 1, time.Hour)

	all, err := s.repo.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all.Reminders, 4)

	guild, err := s.repo.List(s.ctx, &ListInput{GuildID: 100})
	s.Require().NoError(err)
	s.Require().Len(guild.Reminders, 3)
	for i, r := range guild.Reminders {
		s.Equal(int64(i+1), r.ReminderNumber)
	}

	capped, err := s.repo.List(s.ctx, &ListInput{GuildID: 100, Limit: 2})
	s.Require().NoError(err)
	s.Len(capped.Reminders, 2)

	member, err := s.repo.List(s.ctx, &ListInput{GuildID: 100, AuthorID: 1})
	s.Require().NoError(err)
	s.Require().Len(member.Reminders, 2)
	s.Equal(int64(1), member.Reminders[0].ReminderNumber)
	s.Equal(int64(3), member.Reminders[1].ReminderNumber)
}

func (s *SQLRepositoryTestSuite) TestStoreErrorWrapsDriverFailure() {
	s.Require().NoError(s.repo.db.Close())

	_, err := s.repo.List(s.ctx, nil)
	s.Require().Error(err)

	var storeErr *StoreError
	s.True(errors.As(err, &storeErr))
	s.Equal("list", storeErr.Op)
}

func TestSQLRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLRepositoryTestSuite))
}
