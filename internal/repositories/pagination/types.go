package pagination

import "github.com/KirkDiggler/remindme/internal/models"

type SaveInput struct {
	Session *models.PageSession
}

type GetInput struct {
	SessionID string
}
