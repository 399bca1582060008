package models

// InteractionContext is what is needed to answer a slash command with a
// follow-up message after the original response
type InteractionContext struct {
	ApplicationID string `json:"application_id"`
	Token         string `json:"token"`
}
