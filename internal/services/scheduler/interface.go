package scheduler

import (
	"context"

	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/remindme/internal/services/scheduler Service

// Service keeps one pending timer per stored reminder and fires each of them
// at most once
type Service interface {
	// Arm schedules r at r.ExpiresAt, replacing any pending timer for r.ID.
	// Reminders already firing are left alone.
	Arm(r *models.Reminder)

	// Cancel drops the pending timer for id. It reports false when there was
	// none or the reminder is already firing.
	Cancel(id int64) bool

	// CancelGuild drops every pending timer of a guild
	CancelGuild(guildID snowflake.ID) int

	// Reconcile purges expired reminders and arms everything left in the store
	Reconcile(ctx context.Context) (*ReconcileOutput, error)

	// Reconciled reports whether a Reconcile has succeeded
	Reconciled() bool

	// Resync arms stored reminders missing a timer and drops timers whose
	// reminder disappeared. Before the first successful Reconcile it
	// reconciles instead.
	Resync(ctx context.Context) (*ResyncOutput, error)

	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Armed reports whether id has a pending timer
	Armed(id int64) bool

	// Pending is the number of pending timers
	Pending() int
}
