package models

import (
	"time"

	"github.com/KirkDiggler/remindme/internal/snowflake"
)

// Reminder is a single scheduled message
type Reminder struct {
	// ID is the store-assigned identifier, unique across guilds
	ID int64 `json:"id"`

	// GuildID is the Discord guild the reminder belongs to
	GuildID snowflake.ID `json:"guild_id"`

	// ChannelID is where the reminder is delivered on the fallback path
	ChannelID snowflake.ID `json:"channel_id"`

	// AuthorID is the member who created the reminder
	AuthorID snowflake.ID `json:"author_id"`

	// Content is the reminder text, 1 to 1000 characters
	Content string `json:"content"`

	// ExpiresAt is when the reminder is due
	ExpiresAt time.Time `json:"expires_at"`

	// ReminderNumber is the per-guild code users refer to, never reused
	ReminderNumber int64 `json:"reminder_number"`
}
