package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/timeparse"
)

type parseResponse struct {
	Input     string `json:"input"`
	Timestamp int64  `json:"timestamp"`
	Datetime  string `json:"datetime"`
}

// ParseTime shows how a time expression would be understood by /reminder create
func ParseTime(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "input")
		input, err := url.PathUnescape(raw)
		if err != nil {
			input = raw
		}

		at, err := d.Parser.Parse(input)
		if err != nil {
			var parseErr *timeparse.ParseError
			if errors.As(err, &parseErr) {
				writeError(w, http.StatusBadRequest, parseErr.Error())
				return
			}
			d.Logger.Error("failed to parse time", logger.String("input", input), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to parse time")
			return
		}

		writeJSON(w, http.StatusOK, parseResponse{
			Input:     input,
			Timestamp: at.Unix(),
			Datetime:  at.Format(time.RFC3339),
		})
	}
}
