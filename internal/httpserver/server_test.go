package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/KirkDiggler/remindme/internal/common/clock/mocks"
	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/repositories/guild"
	guildMocks "github.com/KirkDiggler/remindme/internal/repositories/guild/mocks"
	"github.com/KirkDiggler/remindme/internal/repositories/reminder"
	reminderMocks "github.com/KirkDiggler/remindme/internal/repositories/reminder/mocks"
	"github.com/KirkDiggler/remindme/internal/timeparse"
)

type ServerTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockGuilds    *guildMocks.MockRepository
	mockReminders *reminderMocks.MockRepository
	server        *httptest.Server
	ready         atomic.Bool
	testNow       time.Time
}

func (s *ServerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockGuilds = guildMocks.NewMockRepository(s.mockCtrl)
	s.mockReminders = reminderMocks.NewMockRepository(s.mockCtrl)
	s.testNow = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.ready.Store(false)

	mockClock := clockMocks.NewMockClock(s.mockCtrl)
	mockClock.EXPECT().Now().Return(s.testNow).AnyTimes()

	parser, err := timeparse.New(&timeparse.Config{Clock: mockClock, Location: time.UTC})
	s.Require().NoError(err)

	d := deps.Deps{
		Logger:    logger.NewNop(),
		StartTime: s.testNow.Add(-time.Minute),
		TimeNow:   func() time.Time { return s.testNow },
		Guilds:    s.mockGuilds,
		Reminders: s.mockReminders,
		Parser:    parser,
		Ready:     s.ready.Load,
	}
	s.server = httptest.NewServer(NewRouter(logger.NewNop(), d))
}

func (s *ServerTestSuite) TearDownTest() {
	s.server.Close()
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) get(path string, into any) int {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()

	if into != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func (s *ServerTestSuite) TestListGuilds() {
	s.mockGuilds.EXPECT().List(gomock.Any()).Return(&guild.ListOutput{Guilds: []*models.Guild{
		{ID: 1, Snowflake: 100, RemindersCount: 4, JoinedAt: s.testNow},
	}}, nil)

	var guilds []*models.Guild
	s.Equal(http.StatusOK, s.get("/guilds/", &guilds))
	s.Require().Len(guilds, 1)
	s.Equal(uint64(100), uint64(guilds[0].Snowflake))
	s.Equal(int64(4), guilds[0].RemindersCount)
}

func (s *ServerTestSuite) TestListGuildsEmpty() {
	s.mockGuilds.EXPECT().List(gomock.Any()).Return(&guild.ListOutput{}, nil)

	var guilds []*models.Guild
	s.Equal(http.StatusOK, s.get("/guilds/", &guilds))
	s.NotNil(guilds)
	s.Empty(guilds)
}

func (s *ServerTestSuite) TestGuildExists() {
	s.mockGuilds.EXPECT().Exists(gomock.Any(), &guild.ExistsInput{Snowflake: 100}).Return(true, nil)
	s.mockGuilds.EXPECT().Exists(gomock.Any(), &guild.ExistsInput{Snowflake: 101}).Return(false, nil)

	var exists bool
	s.Equal(http.StatusOK, s.get("/guilds/100", &exists))
	s.True(exists)

	s.Equal(http.StatusOK, s.get("/guilds/101", &exists))
	s.False(exists)

	s.Equal(http.StatusBadRequest, s.get("/guilds/general", nil))
}

func (s *ServerTestSuite) TestGetGuildWithReminders() {
	s.mockGuilds.EXPECT().Get(gomock.Any(), &guild.GetInput{Snowflake: 100}).
		Return(&models.Guild{ID: 1, Snowflake: 100, RemindersCount: 1}, nil)
	s.mockReminders.EXPECT().List(gomock.Any(), &reminder.ListInput{GuildID: 100}).
		Return(&reminder.ListOutput{Reminders: []*models.Reminder{{ID: 9, GuildID: 100, ReminderNumber: 1, Content: "hi"}}}, nil)

	var g models.Guild
	s.Equal(http.StatusOK, s.get("/guilds/100/", &g))
	s.Require().Len(g.Reminders, 1)
	s.Equal("hi", g.Reminders[0].Content)
}

func (s *ServerTestSuite) TestGetUnknownGuild() {
	s.mockGuilds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)

	s.Equal(http.StatusNotFound, s.get("/guilds/100/", nil))
}

func (s *ServerTestSuite) TestGetGuildStoreFailure() {
	s.mockGuilds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("database is locked"))

	var body map[string]string
	s.Equal(http.StatusInternalServerError, s.get("/guilds/100/", &body))
	s.Equal("failed to get guild", body["error"])
}

func (s *ServerTestSuite) TestGetReminder() {
	s.mockReminders.EXPECT().GetByCode(gomock.Any(), &reminder.GetByCodeInput{GuildID: 100, Code: 3}).
		Return(&models.Reminder{ID: 9, GuildID: 100, ReminderNumber: 3, Content: "stretch"}, nil)
	s.mockReminders.EXPECT().GetByCode(gomock.Any(), &reminder.GetByCodeInput{GuildID: 100, Code: 4}).
		Return(nil, nil)

	var rem models.Reminder
	s.Equal(http.StatusOK, s.get("/guilds/100/reminders/3", &rem))
	s.Equal("stretch", rem.Content)

	s.Equal(http.StatusNotFound, s.get("/guilds/100/reminders/4", nil))
	s.Equal(http.StatusBadRequest, s.get("/guilds/100/reminders/three", nil))
}

func (s *ServerTestSuite) TestParseTime() {
	var body struct {
		Input     string `json:"input"`
		Timestamp int64  `json:"timestamp"`
	}

	s.Equal(http.StatusOK, s.get("/test/1h30m", &body))
	s.Equal("1h30m", body.Input)
	s.Equal(s.testNow.Add(90*time.Minute).Unix(), body.Timestamp)

	s.Equal(http.StatusOK, s.get("/test/2025-06-01%2018:00", &body))
	s.Equal("2025-06-01 18:00", body.Input)
	s.Equal(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC).Unix(), body.Timestamp)
}

func (s *ServerTestSuite) TestParseTimeRejectsNonsense() {
	var body map[string]string
	s.Equal(http.StatusBadRequest, s.get("/test/whenever", &body))
	s.Contains(body["error"], "whenever")
}

func (s *ServerTestSuite) TestHealthz() {
	var body struct {
		Status        string  `json:"status"`
		UptimeSeconds float64 `json:"uptime_seconds"`
		Goroutines    int     `json:"goroutines"`
	}

	s.Equal(http.StatusOK, s.get("/healthz", &body))
	s.Equal("ok", body.Status)
	s.Equal(60.0, body.UptimeSeconds)
	s.Positive(body.Goroutines)
}

func (s *ServerTestSuite) TestReadyz() {
	var body struct {
		Ready bool `json:"ready"`
	}

	s.Equal(http.StatusServiceUnavailable, s.get("/readyz", &body))
	s.False(body.Ready)

	s.ready.Store(true)
	s.Equal(http.StatusOK, s.get("/readyz", &body))
	s.True(body.Ready)
}
