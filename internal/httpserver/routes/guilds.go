package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
	"github.com/KirkDiggler/remindme/internal/httpserver/handlers"
)

// "/guilds/{id}" answers whether the guild is known, "/guilds/{id}/" returns it
func guilds(r chi.Router, d deps.Deps) {
	r.Get("/guilds/", handlers.ListGuilds(d))
	r.Get("/guilds/{id}", handlers.GuildExists(d))
	r.Get("/guilds/{id}/", handlers.GetGuild(d))
	r.Get("/guilds/{id}/reminders/{code}", handlers.GetReminder(d))
}
