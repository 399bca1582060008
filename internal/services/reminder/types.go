package reminder

import (
	"github.com/KirkDiggler/remindme/internal/common/clock"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/repositories/interaction"
	reminderRepo "github.com/KirkDiggler/remindme/internal/repositories/reminder"
	"github.com/KirkDiggler/remindme/internal/services/scheduler"
	"github.com/KirkDiggler/remindme/internal/snowflake"
	"github.com/KirkDiggler/remindme/internal/timeparse"
)

const (
	MaxContentLength = 1000

	// MaxSuggestions is the most codes offered by autocomplete
	MaxSuggestions = 24
)

// Config holds the dependencies of the reminder service
type Config struct {
	Reminders    reminderRepo.Repository
	Scheduler    scheduler.Service
	Interactions interaction.Repository
	Parser       timeparse.Parser
	Clock        clock.Clock
	Logger       logger.Logger
}

// CreateInput contains parameters for creating a reminder
type CreateInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	AuthorID  snowflake.ID

	// TextChannel is false when the command came from a channel reminders
	// cannot be posted to
	TextChannel bool

	Content string

	// In is the raw time expression
	In string

	// Interaction, when set, lets delivery answer as a follow-up
	Interaction *models.InteractionContext
}

// CreateOutput contains the stored reminder
type CreateOutput struct {
	Reminder *models.Reminder
}

// DeleteInput contains parameters for deleting a reminder
type DeleteInput struct {
	GuildID     snowflake.ID
	Code        string
	RequesterID snowflake.ID
	IsAdmin     bool
}

// DeleteOutput contains the deleted reminder
type DeleteOutput struct {
	Reminder *models.Reminder
}

// ListInput lists AuthorID's reminders, or the guild's when AuthorID is zero
type ListInput struct {
	GuildID  snowflake.ID
	AuthorID snowflake.ID
}

type ListOutput struct {
	Reminders []*models.Reminder
}

// AutocompleteInput contains parameters for suggesting reminder codes
type AutocompleteInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	IsAdmin bool
	Prefix  string
}

type AutocompleteOutput struct {
	Codes []string
}
