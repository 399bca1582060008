package interaction

import "github.com/KirkDiggler/remindme/internal/models"

// SaveInput contains parameters for saving an interaction context
type SaveInput struct {
	ReminderID int64
	Context    *models.InteractionContext
}

// GetInput contains parameters for retrieving an interaction context
type GetInput struct {
	ReminderID int64
}

// DeleteInput contains parameters for deleting an interaction context
type DeleteInput struct {
	ReminderID int64
}
