package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
	"github.com/KirkDiggler/remindme/internal/httpserver/handlers"
)

func parse(r chi.Router, d deps.Deps) {
	r.Get("/test/{input}", handlers.ParseTime(d))
}
