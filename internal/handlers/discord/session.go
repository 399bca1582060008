package discord

import "github.com/bwmarrin/discordgo"

//go:generate mockgen -package=mocks -destination=mocks/mock_session.go github.com/KirkDiggler/remindme/internal/handlers/discord Session

// Session is the part of the Discord API command handlers talk to
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// stateSession answers channel lookups from the gateway cache before
// falling back to REST
type stateSession struct {
	*discordgo.Session
}

func (s stateSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if s.State != nil {
		if ch, err := s.State.Channel(channelID); err == nil {
			return ch, nil
		}
	}
	return s.Session.Channel(channelID, options...)
}
