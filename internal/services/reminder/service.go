package reminder

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KirkDiggler/remindme/internal/common/clock"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/repositories/interaction"
	reminderRepo "github.com/KirkDiggler/remindme/internal/repositories/reminder"
	"github.com/KirkDiggler/remindme/internal/services/scheduler"
	"github.com/KirkDiggler/remindme/internal/timeparse"
)

// maxAhead is how far in the future a reminder may be set
const maxAhead = 1825 * 24 * time.Hour

type service struct {
	reminders    reminderRepo.Repository
	scheduler    scheduler.Service
	interactions interaction.Repository
	parser       timeparse.Parser
	clock        clock.Clock
	log          logger.Logger
}

// New creates a new reminder service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Reminders == nil {
		return nil, ErrNilRepository
	}
	if cfg.Scheduler == nil {
		return nil, ErrNilScheduler
	}
	if cfg.Interactions == nil {
		return nil, ErrNilInteractions
	}
	if cfg.Parser == nil {
		return nil, ErrNilParser
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &service{
		reminders:    cfg.Reminders,
		scheduler:    cfg.Scheduler,
		interactions: cfg.Interactions,
		parser:       cfg.Parser,
		clock:        cfg.Clock,
		log:          log.With(logger.String("component", "reminder")),
	}, nil
}

// Create checks the date, then the content, then the channel, and only then
// touches the store
func (s *service) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	if strings.TrimSpace(input.In) == "" {
		return nil, ErrMissingDate
	}

	expiresAt, err := s.parser.Parse(input.In)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !expiresAt.After(now) {
		return nil, ErrInPast
	}
	if !expiresAt.Before(now.Add(maxAhead)) {
		return nil, ErrTooFar
	}

	length := utf8.RuneCountInString(input.Content)
	if length > MaxContentLength {
		return nil, ErrContentTooLong
	}
	if length == 0 {
		return nil, ErrContentEmpty
	}

	if !input.TextChannel {
		return nil, ErrNotTextChannel
	}

	r, err := s.reminders.Add(ctx, &reminderRepo.AddInput{
		GuildID:   input.GuildID,
		ChannelID: input.ChannelID,
		AuthorID:  input.AuthorID,
		ExpiresAt: expiresAt,
		Content:   input.Content,
	})
	if err != nil {
		return nil, err
	}

	if input.Interaction != nil {
		err := s.interactions.Save(ctx, &interaction.SaveInput{ReminderID: r.ID, Context: input.Interaction})
		if err != nil {
			// Delivery falls back to the channel
			s.log.Warn("failed to save interaction", logger.Int64("reminder_id", r.ID), logger.Error(err))
		}
	}

	s.scheduler.Arm(r)

	s.log.Debug("reminder created",
		logger.Int64("reminder_id", r.ID),
		logger.Int64("number", r.ReminderNumber),
		logger.Time("expires_at", r.ExpiresAt))

	return &CreateOutput{Reminder: r}, nil
}

// Delete removes a reminder owned by the requester, or any reminder when the
// requester administers the guild
func (s *service) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	code, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(input.Code), "#"), 10, 64)
	if err != nil {
		return nil, ErrInvalidCode
	}

	r, err := s.reminders.GetByCode(ctx, &reminderRepo.GetByCodeInput{GuildID: input.GuildID, Code: code})
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReminderNotFound
	}

	if r.AuthorID != input.RequesterID && !input.IsAdmin {
		return nil, ErrNotOwner
	}

	s.scheduler.Cancel(r.ID)

	if _, err := s.reminders.Remove(ctx, &reminderRepo.RemoveInput{ID: r.ID}); err != nil {
		return nil, err
	}

	if err := s.interactions.Delete(ctx, &interaction.DeleteInput{ReminderID: r.ID}); err != nil {
		s.log.Warn("failed to forget interaction", logger.Int64("reminder_id", r.ID), logger.Error(err))
	}

	return &DeleteOutput{Reminder: r}, nil
}

func (s *service) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	out, err := s.reminders.List(ctx, &reminderRepo.ListInput{
		GuildID:  input.GuildID,
		AuthorID: input.AuthorID,
	})
	if err != nil {
		return nil, err
	}

	return &ListOutput{Reminders: out.Reminders}, nil
}

// Autocomplete offers the caller's own codes, or every code of the guild to
// administrators, filtered by what has been typed so far
func (s *service) Autocomplete(ctx context.Context, input *AutocompleteInput) (*AutocompleteOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	prefix := strings.TrimPrefix(strings.TrimSpace(input.Prefix), "#")

	listInput := &reminderRepo.ListInput{GuildID: input.GuildID}
	if !input.IsAdmin {
		listInput.AuthorID = input.UserID
	}
	if prefix == "" {
		listInput.Limit = MaxSuggestions
	}

	out, err := s.reminders.List(ctx, listInput)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, MaxSuggestions)
	for _, r := range out.Reminders {
		code := strconv.FormatInt(r.ReminderNumber, 10)
		if !strings.HasPrefix(code, prefix) {
			continue
		}
		codes = append(codes, code)
		if len(codes) == MaxSuggestions {
			break
		}
	}

	return &AutocompleteOutput{Codes: codes}, nil
}
