package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/models"
	"github.com/KirkDiggler/remindme/internal/repositories/guild"
	"github.com/KirkDiggler/remindme/internal/repositories/reminder"
	"github.com/KirkDiggler/remindme/internal/snowflake"
)

func ListGuilds(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := d.Guilds.List(r.Context())
		if err != nil {
			d.Logger.Error("failed to list guilds", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list guilds")
			return
		}

		guilds := out.Guilds
		if guilds == nil {
			guilds = []*models.Guild{}
		}
		writeJSON(w, http.StatusOK, guilds)
	}
}

// GuildExists answers with a bare JSON boolean
func GuildExists(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := guildParam(w, r)
		if !ok {
			return
		}

		exists, err := d.Guilds.Exists(r.Context(), &guild.ExistsInput{Snowflake: id})
		if err != nil {
			d.Logger.Error("failed to look up guild", logger.Stringer("guild_id", id), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to look up guild")
			return
		}
		writeJSON(w, http.StatusOK, exists)
	}
}

// GetGuild returns the guild record with its pending reminders
func GetGuild(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := guildParam(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		g, err := d.Guilds.Get(ctx, &guild.GetInput{Snowflake: id})
		if err != nil {
			d.Logger.Error("failed to get guild", logger.Stringer("guild_id", id), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get guild")
			return
		}
		if g == nil {
			writeError(w, http.StatusNotFound, "guild not found")
			return
		}

		out, err := d.Reminders.List(ctx, &reminder.ListInput{GuildID: id})
		if err != nil {
			d.Logger.Error("failed to list reminders", logger.Stringer("guild_id", id), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list reminders")
			return
		}

		g.Reminders = out.Reminders
		if g.Reminders == nil {
			g.Reminders = []*models.Reminder{}
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func GetReminder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := guildParam(w, r)
		if !ok {
			return
		}

		code, err := strconv.ParseInt(chi.URLParam(r, "code"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "reminder code must be a number")
			return
		}

		rem, err := d.Reminders.GetByCode(r.Context(), &reminder.GetByCodeInput{GuildID: id, Code: code})
		if err != nil {
			d.Logger.Error("failed to get reminder",
				logger.Stringer("guild_id", id), logger.Int64("code", code), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get reminder")
			return
		}
		if rem == nil {
			writeError(w, http.StatusNotFound, "reminder not found")
			return
		}
		writeJSON(w, http.StatusOK, rem)
	}
}

func guildParam(w http.ResponseWriter, r *http.Request) (snowflake.ID, bool) {
	id, err := snowflake.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid guild id")
		return 0, false
	}
	return id, true
}
