package reminder

import (
	"time"

	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

// AddInput contains parameters for adding a reminder
type AddInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	AuthorID  snowflake.ID
	ExpiresAt time.Time
	Content   string
}

// GetInput contains parameters for retrieving a reminder
type GetInput struct {
	ID int64
}

// GetByCodeInput contains parameters for retrieving a reminder by number
type GetByCodeInput struct {
	GuildID snowflake.ID
	Code    int64
}

// RemoveInput contains parameters for removing a reminder
type RemoveInput struct {
	ID int64
}

// RemoveExpiredInput contains parameters for purging due reminders
type RemoveExpiredInput struct {
	Now time.Time
}

// RemoveExpiredOutput contains the number of purged reminders
type RemoveExpiredOutput struct {
	Count int64
}

// ListInput filters a listing. Zero GuildID lists every guild, zero AuthorID
// every author, zero Limit means no cap.
type ListInput struct {
	GuildID  snowflake.ID
	AuthorID snowflake.ID
	Limit    int
}

// ListOutput contains the listed reminders ordered by guild and number
type ListOutput struct {
	Reminders []*models.Reminder
}
