package interaction

import (
	"context"

	"github.com/KirkDiggler/remindme/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/remindme/internal/repositories/interaction Repository

// Repository keeps the follow-up context of the command that created a
// reminder for as long as Discord accepts follow-ups on it
type Repository interface {
	// Save stores the context for a reminder
	Save(ctx context.Context, input *SaveInput) error

	// Get retrieves the context, ErrInteractionNotFound once it has expired
	Get(ctx context.Context, input *GetInput) (*models.InteractionContext, error)

	// Delete forgets the context
	Delete(ctx context.Context, input *DeleteInput) error
}
