package models

import (
	"time"

	"github.com/KirkDiggler/remindme/internal/snowflake"
)

// Guild is a Discord guild the bot has joined
type Guild struct {
	// ID is the store-assigned identifier
	ID int64 `json:"id"`

	// Snowflake is the Discord guild id
	Snowflake snowflake.ID `json:"snowflake"`

	// RemindersCount is the highest reminder number handed out so far
	RemindersCount int64 `json:"reminders_count"`

	// JoinedAt is when the guild row was first written
	JoinedAt time.Time `json:"joined_at"`

	// Reminders is only populated when explicitly requested
	Reminders []*Reminder `json:"reminders,omitempty"`
}
