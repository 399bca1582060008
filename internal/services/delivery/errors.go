package delivery

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/remindme/internal/snowflake"
)

// DeliveryError is returned when neither the follow-up nor the channel
// accepted the reminder. Permanent failures will not succeed on retry.
type DeliveryError struct {
	ReminderID int64
	ChannelID  snowflake.ID
	Permanent  bool
	Err        error
}

func (e *DeliveryError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("%s delivery failure for reminder %d in channel %s: %v", kind, e.ReminderID, e.ChannelID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether Discord refused the request in a way that
// will not change: the channel is gone or the bot cannot post there.
func IsPermanent(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeMissingAccess,
			discordgo.ErrCodeMissingPermissions:
			return true
		}
	}

	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden, http.StatusNotFound:
			return true
		}
	}

	return false
}
