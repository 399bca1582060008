package delivery

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/remindme/internal/services/delivery Service,Sender

// Service delivers due reminders to Discord
type Service interface {
	// Send posts the reminder, returning a *DeliveryError when no path worked
	Send(ctx context.Context, input *SendInput) error
}

// Sender is the part of *discordgo.Session used for delivery
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}
