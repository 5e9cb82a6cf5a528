package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// ChatWS upgrades the connection; the token arrives via the access_token
// query parameter for browsers.
func (a *App) ChatWS(w http.ResponseWriter, r *http.Request) {
	user, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	a.Chat.ServeWS(w, r, user)
}

// ChatHistory returns the latest messages of a channel, oldest first. The
// before parameter (RFC 3339) pages further back.
func (a *App) ChatHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := a.identity(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var before time.Time
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "before must be RFC 3339")
			return
		}
		before = t
	}
	msgs, err := a.Chat.History(r.Context(), user, chi.URLParam(r, "channel"), before, queryInt(r, "limit", 0, 0))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": msgs})
}
