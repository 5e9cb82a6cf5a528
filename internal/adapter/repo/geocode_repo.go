package repo

import (
	"context"

	"strays/internal/domain"
	"strays/internal/infra"
	"strays/internal/sqlinline"
)

// GeocodeCacheRepositoryPG is the persistent tier of the geocode cache.
type GeocodeCacheRepositoryPG struct {
	db infra.SQLExecutor
}

func NewGeocodeCacheRepository(db infra.SQLExecutor) *GeocodeCacheRepositoryPG {
	return &GeocodeCacheRepositoryPG{db: db}
}

// Get returns domain.ErrNotFound when key has never been stored.
func (r *GeocodeCacheRepositoryPG) Get(ctx context.Context, key string) (*domain.GeocodeCacheEntry, error) {
	var e domain.GeocodeCacheEntry
	row := r.db.QueryRow(ctx, sqlinline.QSelectGeocodeCache, key)
	if err := row.Scan(&e.Key, &e.Query, &e.Found, &e.Point.Lat, &e.Point.Lng, &e.UpdatedAt); err != nil {
		return nil, mapErr("select geocode cache", err)
	}
	return &e, nil
}

func (r *GeocodeCacheRepositoryPG) Put(ctx context.Context, e domain.GeocodeCacheEntry) error {
	_, err := r.db.Exec(ctx, sqlinline.QUpsertGeocodeCache, e.Key, e.Query, e.Found, e.Point.Lat, e.Point.Lng)
	return mapErr("upsert geocode cache", err)
}
