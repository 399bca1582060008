package deps

import (
	"time"

	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/repositories/guild"
	"github.com/KirkDiggler/remindme/internal/repositories/reminder"
	"github.com/KirkDiggler/remindme/internal/timeparse"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Guilds    guild.Repository    // Guild bookkeeping
	Reminders reminder.Repository // Reminder store, read only here
	Parser    timeparse.Parser    // Backs /test/{input}

	// Ready reports whether the bot finished its startup sync
	Ready func() bool
}

// Now returns the current time through TimeNow when set
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
