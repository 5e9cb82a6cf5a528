// Package geocode resolves free-text locations and "lat,lng" strings into
// points, backed by a Nominatim-compatible service and a two-tier cache.
package geocode

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"strays/internal/domain"
)

// ErrNotFound is returned when the upstream service has no match for a query.
var ErrNotFound = errors.New("geocode: no match")

// Geocoder looks up a free-text query, optionally biased to an ISO country.
type Geocoder interface {
	Lookup(ctx context.Context, query, country string) (domain.Point, error)
}

// ParseCoordinates accepts "lat,lng" with optional surrounding spaces.
func ParseCoordinates(s string) (domain.Point, bool) {
	latStr, lngStr, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return domain.Point{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Point{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return domain.Point{}, false
	}
	p := domain.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return domain.Point{}, false
	}
	return p, true
}

// Normalize lowercases q, trims it and collapses internal whitespace.
func Normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// CacheKey builds the cache key for q under the given country bias.
func CacheKey(country, q string) string {
	return strings.ToLower(strings.TrimSpace(country)) + "|" + Normalize(q)
}
