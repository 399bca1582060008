package guild

import (
	"context"

	"github.com/KirkDiggler/remindme/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/remindme/internal/repositories/guild Repository

// Repository defines the interface for guild bookkeeping
type Repository interface {
	// Add records a guild, returning the existing row when already known
	Add(ctx context.Context, input *AddInput) (*models.Guild, error)

	// Remove deletes a guild and, by cascade, its reminders
	Remove(ctx context.Context, input *RemoveInput) (*RemoveOutput, error)

	// Exists reports whether the guild is known
	Exists(ctx context.Context, input *ExistsInput) (bool, error)

	// Get retrieves a guild, nil when unknown
	Get(ctx context.Context, input *GetInput) (*models.Guild, error)

	// List retrieves every known guild
	List(ctx context.Context) (*ListOutput, error)
}
