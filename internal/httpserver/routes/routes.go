package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
)

// group is a set of endpoints sharing middlewares
type group struct {
	mount func(r chi.Router, d deps.Deps)
	mws   []func(http.Handler) http.Handler
}

// Guild and reminder lookups read live data, so they are never cached
var groups = []group{
	{mount: guilds, mws: []func(http.Handler) http.Handler{middleware.NoCache}},
	{mount: parse},
	{mount: health},
}

// Mount adds the guild API, the date parser check and the probes to r
func Mount(r chi.Router, d deps.Deps) {
	for _, g := range groups {
		r.Group(func(r chi.Router) {
			r.Use(g.mws...)
			g.mount(r, d)
		})
	}
}
