package delivery

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/repositories/interaction"
)

var mentionPattern = regexp.MustCompile(`<@!\d+>|<@&\d+>|<#\d+>|<@\d+>|@everyone|@here`)

type service struct {
	sender       Sender
	interactions interaction.Repository
	log          logger.Logger
	color        int
	timeout      time.Duration
}

// New creates a new delivery service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Sender == nil {
		return nil, errors.New("sender cannot be nil")
	}

	if cfg.Interactions == nil {
		return nil, errors.New("interaction repository cannot be nil")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &service{
		sender:       cfg.Sender,
		interactions: cfg.Interactions,
		log:          log.With(logger.String("component", "delivery")),
		color:        cfg.Color,
		timeout:      timeout,
	}, nil
}

// Send answers the creating command's follow-up when its token is still
// known, otherwise (or when that fails) posts straight to the channel
func (s *service) Send(ctx context.Context, input *SendInput) error {
	if input == nil || input.Reminder == nil {
		return errors.New("input and reminder cannot be nil")
	}

	r := input.Reminder
	log := s.log.With(logger.Int64("reminder_id", r.ID), logger.Stringer("channel_id", r.ChannelID))

	defer func() {
		if err := s.interactions.Delete(ctx, &interaction.DeleteInput{ReminderID: r.ID}); err != nil {
			log.Warn("failed to forget interaction", logger.Error(err))
		}
	}()

	ic, err := s.interactions.Get(ctx, &interaction.GetInput{ReminderID: r.ID})
	switch {
	case err == nil:
		ferr := s.followup(ctx, ic, r)
		if ferr == nil {
			log.Debug("reminder delivered as follow-up")
			return nil
		}
		log.Warn("follow-up failed, falling back to channel", logger.Error(ferr))
	case !errors.Is(err, interaction.ErrInteractionNotFound):
		log.Warn("failed to look up interaction", logger.Error(err))
	}

	if err := s.toChannel(ctx, r); err != nil {
		return &DeliveryError{
			ReminderID: r.ID,
			ChannelID:  r.ChannelID,
			Permanent:  IsPermanent(err),
			Err:        err,
		}
	}

	log.Debug("reminder delivered to channel")
	return nil
}

func (s *service) followup(ctx context.Context, ic *models.InteractionContext, r *models.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.sender.FollowupMessageCreate(
		&discordgo.Interaction{AppID: ic.ApplicationID, Token: ic.Token},
		true,
		&discordgo.WebhookParams{
			Content:         Content(r),
			Embeds:          []*discordgo.MessageEmbed{s.embed(r)},
			AllowedMentions: allowedMentions(),
		},
		discordgo.WithContext(ctx),
	)
	return err
}

func (s *service) toChannel(ctx context.Context, r *models.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.sender.ChannelMessageSendComplex(
		r.ChannelID.String(),
		&discordgo.MessageSend{
			Content:         Content(r),
			Embeds:          []*discordgo.MessageEmbed{s.embed(r)},
			AllowedMentions: allowedMentions(),
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to send to channel: %w", err)
	}
	return nil
}

func (s *service) embed(r *models.Reminder) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Reminder `#%d`: ", r.ReminderNumber),
		Description: r.Content,
		Color:       s.color,
	}
}

// Content is the message text of a delivered reminder: the author's mention
// followed by every mention found in the reminder itself
func Content(r *models.Reminder) string {
	parts := append([]string{r.AuthorID.Mention()}, Mentions(r.Content)...)
	return strings.Join(parts, " ")
}

// Mentions extracts user, role, channel and broadcast mentions from text
func Mentions(text string) []string {
	return mentionPattern.FindAllString(text, -1)
}

// Only users are pinged, whatever the reminder text contains
func allowedMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{
		Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
	}
}
