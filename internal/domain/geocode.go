package domain

import "time"

// GeocodeCacheEntry is a persisted geocoding result. Found is false for
// queries the upstream service could not resolve.
type GeocodeCacheEntry struct {
	Key       string
	Query     string
	Found     bool
	Point     Point
	UpdatedAt time.Time
}
