package delivery

import (
	"time"

	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/repositories/interaction"
)

// DefaultTimeout bounds every Discord call made while delivering
const DefaultTimeout = 10 * time.Second

// Config holds the dependencies of the delivery service
type Config struct {
	Sender       Sender
	Interactions interaction.Repository
	Logger       logger.Logger

	// Color of the reminder embed
	Color int

	// Timeout overrides DefaultTimeout when positive
	Timeout time.Duration
}

// SendInput contains the reminder to deliver
type SendInput struct {
	Reminder *models.Reminder
}
