package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	if a.Chat != nil {
		payload["online"] = a.Chat.Hub().Online()
	}
	a.json(w, http.StatusOK, payload)
}
