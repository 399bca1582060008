package discord

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/remindme/internal/services/reminder"
	"github.com/KirkDiggler/remindme/internal/timeparse"
)

const (
	msgForbidden   = "I don't have permissions to send messages in that channel"
	msgDiscordFail = "I couldn't send the reminder in the channel"
	msgUnknownDate = "I couldn't understand that date, try something like `1h30m` or `2025-06-01 18:00`"
	msgGeneric     = "Something went wrong, please try again later"
	msgExpiredList = "This list has expired, run the command again"
	msgNotYourList = "Only the member who ran the command can turn these pages"
)

// commandErrorMessage turns an error from a command into the text shown to
// the member. Only user-facing errors keep their own wording.
func commandErrorMessage(err error) string {
	var validationErr reminder.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	var permissionErr reminder.PermissionError
	if errors.As(err, &permissionErr) {
		return permissionErr.Error()
	}

	var parseErr *timeparse.ParseError
	if errors.As(err, &parseErr) {
		return msgUnknownDate
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
			return msgForbidden
		}
		return msgDiscordFail
	}

	return msgGeneric
}
