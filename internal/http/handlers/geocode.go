package handlers

import (
	"errors"
	"net/http"
	"strings"

	"strays/internal/geocode"
)

func (a *App) Geocode(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "q required")
		return
	}
	country := a.country(r)
	if c := strings.TrimSpace(r.URL.Query().Get("country")); c != "" {
		country = strings.ToLower(c)
	}
	res, err := a.Geocoder.Resolve(r.Context(), q, country)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "location not found")
			return
		}
		a.Logger.Warn().Err(err).Str("q", q).Msg("geocode failed")
		a.error(w, http.StatusBadGateway, "upstream", "geocoding service unavailable")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"query":  q,
		"lat":    res.Point.Lat,
		"lng":    res.Point.Lng,
		"source": res.Source,
	})
}
