package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/remindme/internal/config"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/repositories/pagination"
	"github.com/KirkDiggler/remindme/internal/services/reminder"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

// DefaultDeleteAfter is how long create and delete confirmations stay up
const DefaultDeleteAfter = 30 * time.Second

// ReminderCommandConfig holds the dependencies of the /reminder command
type ReminderCommandConfig struct {
	Reminders reminder.Service
	Pages     pagination.Repository
	Colors    config.Colors
	Logger    logger.Logger

	// DeleteAfter overrides DefaultDeleteAfter, negative keeps confirmations
	DeleteAfter time.Duration
}

// ReminderCommand handles the /reminder command and its page buttons
type ReminderCommand struct {
	BaseCommand
	reminders   reminder.Service
	pages       pagination.Repository
	colors      config.Colors
	log         logger.Logger
	deleteAfter time.Duration
}

// NewReminderCommand creates a new reminder command handler
func NewReminderCommand(cfg *ReminderCommandConfig) (*ReminderCommand, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Reminders == nil {
		return nil, errors.New("reminder service cannot be nil")
	}

	if cfg.Pages == nil {
		return nil, errors.New("pagination repository cannot be nil")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	deleteAfter := cfg.DeleteAfter
	if deleteAfter == 0 {
		deleteAfter = DefaultDeleteAfter
	}

	return &ReminderCommand{
		BaseCommand: BaseCommand{
			Name:        "reminder",
			Description: "Schedule reminders for this server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a reminder",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "content",
							Description: "The content of the reminder",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "in",
							Description: "In how long should the reminder be sent",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        "list",
					Description: "List reminders",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "me",
							Description: "List your reminders",
						},
						{
							Type:        discordgo.ApplicationCommandOptionSubCommand,
							Name:        "all",
							Description: "List every reminder of this server",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete a reminder",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionString,
							Name:         "code",
							Description:  "The number of the reminder you want to delete: `<number>`",
							Required:     true,
							Autocomplete: true,
						},
					},
				},
			},
		},
		reminders:   cfg.Reminders,
		pages:       cfg.Pages,
		colors:      cfg.Colors,
		log:         log.With(logger.String("command", "reminder")),
		deleteAfter: deleteAfter,
	}, nil
}

// Handle processes a Discord interaction for the reminder command
func (c *ReminderCommand) Handle(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}
	if len(data.Options) == 0 {
		return errors.New("missing subcommand")
	}

	sub := data.Options[0]

	var err error
	switch sub.Name {
	case "create":
		err = c.handleCreate(ctx, s, i, sub.Options)
	case "list":
		if len(sub.Options) == 0 {
			return errors.New("missing list subcommand")
		}
		err = c.handleList(ctx, s, i, sub.Options[0].Name == "all")
	case "delete":
		err = c.handleDelete(ctx, s, i, sub.Options)
	default:
		return fmt.Errorf("unknown subcommand %q", sub.Name)
	}

	if err != nil {
		return c.respondError(s, i, err)
	}
	return nil
}

func (c *ReminderCommand) handleCreate(ctx context.Context, s Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionValues(options)

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild id: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return fmt.Errorf("invalid channel id: %w", err)
	}

	out, err := c.reminders.Create(ctx, &reminder.CreateInput{
		GuildID:     guildID,
		ChannelID:   channelID,
		AuthorID:    snowflake.OfInteractionUser(i.Interaction),
		TextChannel: c.isTextChannel(s, i.ChannelID),
		Content:     opts["content"],
		In:          opts["in"],
		Interaction: &models.InteractionContext{
			ApplicationID: i.AppID,
			Token:         i.Token,
		},
	})
	if err != nil {
		return err
	}

	if err := RespondWithEmbed(s, i, withAuthor(createdEmbed(out.Reminder, c.colors), i)); err != nil {
		return err
	}

	c.deleteLater(s, i)
	return nil
}

func (c *ReminderCommand) handleList(ctx context.Context, s Session, i *discordgo.InteractionCreate, all bool) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild id: %w", err)
	}

	userID := snowflake.OfInteractionUser(i.Interaction)
	input := &reminder.ListInput{GuildID: guildID, AuthorID: userID}
	title, description, empty := "Your reminders", "Here are all your reminders", "You don't have any reminders"

	if all {
		if !isAdministrator(i) {
			return reminder.ErrNotAdministrator
		}
		input.AuthorID = 0
		title, description, empty = "All reminders", "Here are all reminders", "There are no reminders created for this server"
	}

	out, err := c.reminders.List(ctx, input)
	if err != nil {
		return err
	}

	pages := BuildPages(title, description, out.Reminders)
	if len(pages) == 0 {
		return RespondWithEmbed(s, i, withAuthor(errorEmbed("No reminders", empty, c.colors), i))
	}

	var buttons []discordgo.MessageComponent
	if len(pages) > 1 {
		session, err := c.pages.Save(ctx, &pagination.SaveInput{
			Session: &models.PageSession{OwnerID: userID, Pages: pages},
		})
		if err != nil {
			// Still show the first page, just without buttons
			c.log.Warn("failed to save page session", logger.Error(err))
		} else {
			buttons = pageButtons(session.ID, 0, len(pages))
		}
	}

	return RespondWithEmbed(s, i, withAuthor(renderPage(pages[0], 0, len(pages), c.colors), i), buttons...)
}

func (c *ReminderCommand) handleDelete(ctx context.Context, s Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return fmt.Errorf("invalid guild id: %w", err)
	}

	out, err := c.reminders.Delete(ctx, &reminder.DeleteInput{
		GuildID:     guildID,
		Code:        optionValues(options)["code"],
		RequesterID: snowflake.OfInteractionUser(i.Interaction),
		IsAdmin:     isAdministrator(i),
	})
	if err != nil {
		return err
	}

	if err := RespondWithEmbed(s, i, withAuthor(deletedEmbed(out.Reminder, c.colors), i)); err != nil {
		return err
	}

	c.deleteLater(s, i)
	return nil
}

// Autocomplete suggests reminder codes for /reminder delete
func (c *ReminderCommand) Autocomplete(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()

	var prefix string
	if len(data.Options) > 0 {
		for _, opt := range data.Options[0].Options {
			if opt.Focused {
				prefix = opt.StringValue()
			}
		}
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return RespondWithChoices(s, i, nil)
	}

	out, err := c.reminders.Autocomplete(ctx, &reminder.AutocompleteInput{
		GuildID: guildID,
		UserID:  snowflake.OfInteractionUser(i.Interaction),
		IsAdmin: isAdministrator(i),
		Prefix:  prefix,
	})
	if err != nil {
		c.log.Warn("autocomplete failed", logger.Error(err))
		return RespondWithChoices(s, i, nil)
	}

	return RespondWithChoices(s, i, out.Codes)
}

func (c *ReminderCommand) Prefix() string {
	return PageButtonPrefix
}

// HandleComponent turns the page of a listing. Sessions expire after a minute
// of inactivity and only their owner may page through them.
func (c *ReminderCommand) HandleComponent(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	sessionID, index, err := parsePageCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return err
	}

	session, err := c.pages.Get(ctx, &pagination.GetInput{SessionID: sessionID})
	if err != nil {
		if errors.Is(err, pagination.ErrSessionNotFound) {
			return RespondWithEphemeralEmbed(s, i, errorEmbed("Error", msgExpiredList, c.colors))
		}
		c.log.Error("failed to load page session", logger.String("session_id", sessionID), logger.Error(err))
		return RespondWithEphemeralEmbed(s, i, errorEmbed("Error", msgGeneric, c.colors))
	}

	if session.OwnerID != snowflake.OfInteractionUser(i.Interaction) {
		return RespondWithEphemeralEmbed(s, i, errorEmbed("Error", msgNotYourList, c.colors))
	}

	total := len(session.Pages)
	if total == 0 {
		return RespondWithEphemeralEmbed(s, i, errorEmbed("Error", msgExpiredList, c.colors))
	}
	index = min(index, total-1)

	return UpdateWithEmbed(s, i, withAuthor(renderPage(session.Pages[index], index, total, c.colors), i),
		pageButtons(session.ID, index, total))
}

func (c *ReminderCommand) respondError(s Session, i *discordgo.InteractionCreate, err error) error {
	msg := commandErrorMessage(err)
	if msg == msgGeneric {
		c.log.Error("reminder command failed", logger.Error(err))
	} else {
		c.log.Debug("reminder command rejected", logger.Error(err))
	}

	return RespondWithEphemeralEmbed(s, i, withAuthor(errorEmbed("Error", msg, c.colors), i))
}

func (c *ReminderCommand) isTextChannel(s Session, channelID string) bool {
	ch, err := s.Channel(channelID)
	if err != nil {
		c.log.Warn("failed to look up channel", logger.String("channel_id", channelID), logger.Error(err))
		return false
	}
	return ch.Type == discordgo.ChannelTypeGuildText || ch.Type == discordgo.ChannelTypeGuildNews
}

func (c *ReminderCommand) deleteLater(s Session, i *discordgo.InteractionCreate) {
	if c.deleteAfter < 0 {
		return
	}

	time.AfterFunc(c.deleteAfter, func() {
		if err := s.InteractionResponseDelete(i.Interaction); err != nil {
			c.log.Debug("failed to delete confirmation", logger.Error(err))
		}
	})
}

func optionValues(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	values := make(map[string]string, len(options))
	for _, opt := range options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			values[opt.Name] = opt.StringValue()
		}
	}
	return values
}

func isAdministrator(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}
