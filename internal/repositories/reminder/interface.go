package reminder

import (
	"context"

	"github.com/KirkDiggler/remindme/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/remindme/internal/repositories/reminder Repository

// Repository defines the interface for reminder persistence. Lookups return
// nil, nil when nothing matches.
type Repository interface {
	// Add numbers and stores a reminder, creating the guild row if needed
	Add(ctx context.Context, input *AddInput) (*models.Reminder, error)

	// Get retrieves a reminder by ID
	Get(ctx context.Context, input *GetInput) (*models.Reminder, error)

	// GetByCode retrieves a reminder by its per-guild number
	GetByCode(ctx context.Context, input *GetByCodeInput) (*models.Reminder, error)

	// Remove deletes a reminder and returns what was deleted
	Remove(ctx context.Context, input *RemoveInput) (*models.Reminder, error)

	// RemoveExpired deletes every reminder due at or before input.Now
	RemoveExpired(ctx context.Context, input *RemoveExpiredInput) (*RemoveExpiredOutput, error)

	// List retrieves reminders, optionally scoped to a guild and author
	List(ctx context.Context, input *ListInput) (*ListOutput, error)
}
