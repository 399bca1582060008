package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
	"github.com/KirkDiggler/remindme/internal/httpserver/handlers"
)

func health(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))
}
