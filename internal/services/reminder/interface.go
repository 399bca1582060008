package reminder

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/remindme/internal/services/reminder Service

// Service is the reminder command surface: it validates user input and
// keeps the store, the scheduler and the interaction registry in step
type Service interface {
	// Create validates and stores a reminder, then arms it
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)

	// Delete removes a reminder by its per-guild code
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)

	// List returns a member's reminders, or the whole guild's
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Autocomplete suggests deletable codes
	Autocomplete(ctx context.Context, input *AutocompleteInput) (*AutocompleteOutput, error)
}
