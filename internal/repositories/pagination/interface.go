package pagination

import (
	"context"

	"github.com/KirkDiggler/remindme/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/remindme/internal/repositories/pagination Repository

// Repository holds listing sessions while their buttons are live
type Repository interface {
	// Save stores a session, assigning an ID when it has none
	Save(ctx context.Context, input *SaveInput) (*models.PageSession, error)

	// Get retrieves a session and extends its lifetime
	Get(ctx context.Context, input *GetInput) (*models.PageSession, error)
}
