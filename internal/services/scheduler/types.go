package scheduler

import (
	"time"

	"github.com/KirkDiggler/remindme/internal/common/clock"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/repositories/reminder"
	"github.com/KirkDiggler/remindme/internal/services/delivery"
)

const (
	// DefaultWorkers bounds concurrent deliveries
	DefaultWorkers = 8

	// DefaultMaxWait is the longest the loop sleeps before re-reading the clock
	DefaultMaxWait = time.Minute
)

// Config holds the dependencies of the scheduler
type Config struct {
	Reminders reminder.Repository
	Delivery  delivery.Service
	Clock     clock.Clock
	Logger    logger.Logger

	// Workers overrides DefaultWorkers when positive
	Workers int

	// ResyncSchedule is a cron spec for Resync, empty disables it
	ResyncSchedule string

	// Location the cron schedule is evaluated in
	Location *time.Location

	// MaxWait overrides DefaultMaxWait when positive
	MaxWait time.Duration
}

// ReconcileOutput summarises a startup reconciliation
type ReconcileOutput struct {
	Purged  int64
	Armed   int
	Dropped int
}

// ResyncOutput summarises a periodic resync
type ResyncOutput struct {
	Armed   int
	Dropped int
}
