package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/remindme/internal/config"
	"github.com/KirkDiggler/remindme/internal/handlers/discord/mocks"
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/repositories/pagination"
	paginationMocks "github.com/KirkDiggler/remindme/internal/repositories/pagination/mocks"
	"github.com/KirkDiggler/remindme/internal/services/reminder"
	reminderMocks "github.com/KirkDiggler/remindme/internal/services/reminder/mocks"
)

var testColors = config.Colors{Default: 0x1, Error: 0x2, Success: 0x3, Warning: 0x4, Info: 0x5}

type ReminderCommandTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockSession   *mocks.MockSession
	mockReminders *reminderMocks.MockService
	mockPages     *paginationMocks.MockRepository
	command       *ReminderCommand
	ctx           context.Context

	stored *models.Reminder
}

func (s *ReminderCommandTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockSession = mocks.NewMockSession(s.mockCtrl)
	s.mockReminders = reminderMocks.NewMockService(s.mockCtrl)
	s.mockPages = paginationMocks.NewMockRepository(s.mockCtrl)
	s.ctx = context.Background()

	cmd, err := NewReminderCommand(&ReminderCommandConfig{
		Reminders:   s.mockReminders,
		Pages:       s.mockPages,
		Colors:      testColors,
		DeleteAfter: -1,
	})
	s.Require().NoError(err)
	s.command = cmd

	s.stored = &models.Reminder{
		ID:             7,
		GuildID:        100,
		ChannelID:      300,
		AuthorID:       200,
		Content:        "stretch",
		ExpiresAt:      time.Date(2025, 4, 19, 13, 0, 0, 0, time.UTC),
		ReminderNumber: 3,
	}
}

func TestReminderCommandTestSuite(t *testing.T) {
	suite.Run(t, new(ReminderCommandTestSuite))
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func subcommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: options,
	}
}

func newInteraction(kind discordgo.InteractionType, data discordgo.InteractionData, userID string, admin bool) *discordgo.InteractionCreate {
	var perms int64
	if admin {
		perms = discordgo.PermissionAdministrator
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "900",
		AppID:     "app",
		Token:     "tok",
		Type:      kind,
		GuildID:   "100",
		ChannelID: "300",
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: userID, Username: "ada"},
			Permissions: perms,
		},
		Data: data,
	}}
}

func commandInteraction(sub *discordgo.ApplicationCommandInteractionDataOption, admin bool) *discordgo.InteractionCreate {
	return newInteraction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{
		Name:    "reminder",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{sub},
	}, "200", admin)
}

func buttonInteraction(customID, userID string) *discordgo.InteractionCreate {
	return newInteraction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{
		CustomID:      customID,
		ComponentType: discordgo.ButtonComponent,
	}, userID, false)
}

// expectRespond captures the next response sent to the session
func (s *ReminderCommandTestSuite) expectRespond(i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	got := &discordgo.InteractionResponse{}
	s.mockSession.EXPECT().InteractionRespond(i.Interaction, gomock.Any()).
		DoAndReturn(func(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
			*got = *resp
			return nil
		})
	return got
}

func (s *ReminderCommandTestSuite) TestCreate() {
	i := commandInteraction(subcommand("create", stringOption("content", "stretch"), stringOption("in", "1h")), false)

	s.mockSession.EXPECT().Channel("300").Return(&discordgo.Channel{ID: "300", Type: discordgo.ChannelTypeGuildText}, nil)
	s.mockReminders.EXPECT().Create(s.ctx, &reminder.CreateInput{
		GuildID:     100,
		ChannelID:   300,
		AuthorID:    200,
		TextChannel: true,
		Content:     "stretch",
		In:          "1h",
		Interaction: &models.InteractionContext{ApplicationID: "app", Token: "tok"},
	}).Return(&reminder.CreateOutput{Reminder: s.stored}, nil)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	s.Equal(discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	s.Require().Len(resp.Data.Embeds, 1)
	s.Contains(resp.Data.Embeds[0].Description, "Reminder `#3` created successfully")
	s.Contains(resp.Data.Embeds[0].Description, fmt.Sprintf("<t:%d:F>", s.stored.ExpiresAt.Unix()))
	s.Equal(testColors.Success, resp.Data.Embeds[0].Color)
	s.Equal("ada", resp.Data.Embeds[0].Author.Name)
	s.Zero(resp.Data.Flags)
}

func (s *ReminderCommandTestSuite) TestCreateConfirmationIsDeleted() {
	s.command.deleteAfter = 10 * time.Millisecond
	i := commandInteraction(subcommand("create", stringOption("content", "stretch"), stringOption("in", "1h")), false)

	deleted := make(chan struct{})
	s.mockSession.EXPECT().Channel("300").Return(&discordgo.Channel{Type: discordgo.ChannelTypeGuildNews}, nil)
	s.mockReminders.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&reminder.CreateOutput{Reminder: s.stored}, nil)
	s.expectRespond(i)
	s.mockSession.EXPECT().InteractionResponseDelete(i.Interaction).DoAndReturn(
		func(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
			close(deleted)
			return nil
		})

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	select {
	case <-deleted:
	case <-time.After(2 * time.Second):
		s.Fail("confirmation was not deleted")
	}
}

func (s *ReminderCommandTestSuite) TestCreateRejected() {
	i := commandInteraction(subcommand("create", stringOption("content", "stretch"), stringOption("in", "1h")), false)

	s.mockSession.EXPECT().Channel("300").Return(nil, errors.New("unknown channel"))
	s.mockReminders.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in *reminder.CreateInput) (*reminder.CreateOutput, error) {
			s.False(in.TextChannel)
			return nil, reminder.ErrNotTextChannel
		})
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	s.Equal(discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	s.Equal(string(reminder.ErrNotTextChannel), resp.Data.Embeds[0].Description)
	s.Equal(testColors.Error, resp.Data.Embeds[0].Color)
}

func (s *ReminderCommandTestSuite) TestListMinePaginates() {
	reminders := make([]*models.Reminder, 0, 12)
	for n := int64(1); n <= 12; n++ {
		reminders = append(reminders, &models.Reminder{ReminderNumber: n, AuthorID: 200, Content: "x"})
	}
	i := commandInteraction(&discordgo.ApplicationCommandInteractionDataOption{
		Name:    "list",
		Type:    discordgo.ApplicationCommandOptionSubCommandGroup,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{subcommand("me")},
	}, false)

	s.mockReminders.EXPECT().List(s.ctx, &reminder.ListInput{GuildID: 100, AuthorID: 200}).
		Return(&reminder.ListOutput{Reminders: reminders}, nil)
	s.mockPages.EXPECT().Save(s.ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, in *pagination.SaveInput) (*models.PageSession, error) {
			s.Equal(uint64(200), uint64(in.Session.OwnerID))
			s.Len(in.Session.Pages, 2)
			saved := *in.Session
			saved.ID = "sess"
			return &saved, nil
		})
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	embed := resp.Data.Embeds[0]
	s.Equal("Your reminders", embed.Title)
	s.Len(embed.Fields, PageSize)
	s.Equal("Page 1/2", embed.Footer.Text)
	s.Require().Len(resp.Data.Components, 1)

	row := resp.Data.Components[0].(discordgo.ActionsRow)
	prev := row.Components[0].(discordgo.Button)
	next := row.Components[1].(discordgo.Button)
	s.True(prev.Disabled)
	s.False(next.Disabled)
	s.Equal("reminder_page:sess:1", next.CustomID)
}

func (s *ReminderCommandTestSuite) TestListSinglePageHasNoButtons() {
	i := commandInteraction(&discordgo.ApplicationCommandInteractionDataOption{
		Name:    "list",
		Type:    discordgo.ApplicationCommandOptionSubCommandGroup,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{subcommand("all")},
	}, true)

	s.mockReminders.EXPECT().List(s.ctx, &reminder.ListInput{GuildID: 100}).
		Return(&reminder.ListOutput{Reminders: []*models.Reminder{s.stored}}, nil)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	s.Equal("All reminders", resp.Data.Embeds[0].Title)
	s.Nil(resp.Data.Embeds[0].Footer)
	s.Empty(resp.Data.Components)
}

func (s *ReminderCommandTestSuite) TestListEmpty() {
	i := commandInteraction(&discordgo.ApplicationCommandInteractionDataOption{
		Name:    "list",
		Type:    discordgo.ApplicationCommandOptionSubCommandGroup,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{subcommand("me")},
	}, false)

	s.mockReminders.EXPECT().List(gomock.Any(), gomock.Any()).Return(&reminder.ListOutput{}, nil)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	s.Equal("No reminders", resp.Data.Embeds[0].Title)
	s.Equal("You don't have any reminders", resp.Data.Embeds[0].Description)
}

func (s *ReminderCommandTestSuite) TestListAllRequiresAdministrator() {
	i := commandInteraction(&discordgo.ApplicationCommandInteractionDataOption{
		Name:    "list",
		Type:    discordgo.ApplicationCommandOptionSubCommandGroup,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{subcommand("all")},
	}, false)

	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	s.Equal(string(reminder.ErrNotAdministrator), resp.Data.Embeds[0].Description)
	s.Equal(discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func (s *ReminderCommandTestSuite) TestDelete() {
	i := commandInteraction(subcommand("delete", stringOption("code", "3")), true)

	s.mockReminders.EXPECT().Delete(s.ctx, &reminder.DeleteInput{
		GuildID:     100,
		Code:        "3",
		RequesterID: 200,
		IsAdmin:     true,
	}).Return(&reminder.DeleteOutput{Reminder: s.stored}, nil)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	s.Equal(":alarm_clock: Reminder `#3` deleted successfully", resp.Data.Embeds[0].Description)
}

func (s *ReminderCommandTestSuite) TestDeleteOthersReminder() {
	i := commandInteraction(subcommand("delete", stringOption("code", "3")), false)

	s.mockReminders.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil, reminder.ErrNotOwner)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Handle(s.ctx, s.mockSession, i))

	s.Equal("You can't delete other people's reminders", resp.Data.Embeds[0].Description)
}

func (s *ReminderCommandTestSuite) TestAutocomplete() {
	focused := stringOption("code", "1")
	focused.Focused = true
	i := newInteraction(discordgo.InteractionApplicationCommandAutocomplete, discordgo.ApplicationCommandInteractionData{
		Name:    "reminder",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{subcommand("delete", focused)},
	}, "200", false)

	s.mockReminders.EXPECT().Autocomplete(s.ctx, &reminder.AutocompleteInput{GuildID: 100, UserID: 200, Prefix: "1"}).
		Return(&reminder.AutocompleteOutput{Codes: []string{"1", "12"}}, nil)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.Autocomplete(s.ctx, s.mockSession, i))

	s.Equal(discordgo.InteractionApplicationCommandAutocompleteResult, resp.Type)
	s.Require().Len(resp.Data.Choices, 2)
	s.Equal("12", resp.Data.Choices[1].Value)
}

func (s *ReminderCommandTestSuite) pageSession(pages int) *models.PageSession {
	session := &models.PageSession{ID: "sess", OwnerID: 200}
	for n := 0; n < pages; n++ {
		session.Pages = append(session.Pages, models.Page{
			Title:  "Your reminders",
			Fields: []models.PageField{{Name: fmt.Sprintf("#%d", n), Value: "x"}},
		})
	}
	return session
}

func (s *ReminderCommandTestSuite) TestTurnPage() {
	i := buttonInteraction("reminder_page:sess:2", "200")

	s.mockPages.EXPECT().Get(s.ctx, &pagination.GetInput{SessionID: "sess"}).Return(s.pageSession(3), nil)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.HandleComponent(s.ctx, s.mockSession, i))

	s.Equal(discordgo.InteractionResponseUpdateMessage, resp.Type)
	s.Equal("#2", resp.Data.Embeds[0].Fields[0].Name)
	s.Equal("Page 3/3", resp.Data.Embeds[0].Footer.Text)

	row := resp.Data.Components[0].(discordgo.ActionsRow)
	s.Equal("reminder_page:sess:1", row.Components[0].(discordgo.Button).CustomID)
	s.True(row.Components[1].(discordgo.Button).Disabled)
}

func (s *ReminderCommandTestSuite) TestTurnPageByOtherMember() {
	i := buttonInteraction("reminder_page:sess:1", "999")

	s.mockPages.EXPECT().Get(gomock.Any(), gomock.Any()).Return(s.pageSession(3), nil)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.HandleComponent(s.ctx, s.mockSession, i))

	s.Equal(discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	s.Equal(discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	s.Equal(msgNotYourList, resp.Data.Embeds[0].Description)
}

func (s *ReminderCommandTestSuite) TestTurnExpiredPage() {
	i := buttonInteraction("reminder_page:sess:1", "200")

	s.mockPages.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, pagination.ErrSessionNotFound)
	resp := s.expectRespond(i)

	s.Require().NoError(s.command.HandleComponent(s.ctx, s.mockSession, i))

	s.True(strings.HasPrefix(resp.Data.Embeds[0].Description, "This list has expired"))
}

func (s *ReminderCommandTestSuite) TestMalformedButton() {
	i := buttonInteraction("reminder_page:sess:x", "200")

	s.Error(s.command.HandleComponent(s.ctx, s.mockSession, i))
}
