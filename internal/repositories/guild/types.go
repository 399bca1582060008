package guild

import (
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

type AddInput struct {
	Snowflake snowflake.ID
}

type RemoveInput struct {
	Snowflake snowflake.ID
}

// RemoveOutput reports whether a row was deleted
type RemoveOutput struct {
	Removed bool
}

type ExistsInput struct {
	Snowflake snowflake.ID
}

type GetInput struct {
	Snowflake snowflake.ID
}

type ListOutput struct {
	Guilds []*models.Guild
}
