package handlers

import (
	"fmt"
	"net/http"

	"strays/internal/export"
)

func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	overview, err := a.Analytics.Overview(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, overview)
}

func (a *App) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Analytics.Leaderboard(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": entries})
}

// AdminExport streams a zip with donations.csv and reports.csv.
func (a *App) AdminExport(w http.ResponseWriter, r *http.Request) {
	now := a.clock()
	data, err := export.Bundle(r.Context(), a.Donations, a.Reports, now)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="strays-export-%s.zip"`, now.Format("20060102-150405")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
