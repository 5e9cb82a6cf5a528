package geocode

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"strays/internal/domain"
)

// Source tells where a resolution came from.
type Source string

const (
	SourceCoordinates Source = "coordinates"
	SourceMemory      Source = "memory"
	SourceStore       Source = "store"
	SourceUpstream    Source = "upstream"
)

// Result is a successful resolution.
type Result struct {
	Point  domain.Point
	Source Source
}

// CacheConfig sizes the in-memory tier and sets entry lifetimes.
type CacheConfig struct {
	Size          int
	TTL           time.Duration
	NegativeTTL   time.Duration
	// LookupTimeout bounds a shared lookup, which outlives the caller that started it.
	LookupTimeout time.Duration
}

type memoEntry struct {
	found   bool
	point   domain.Point
	expires time.Time
}

// Resolver answers coordinate strings directly and serves free text from an
// in-memory LRU, then the persistent store, then the upstream geocoder.
// Concurrent lookups of the same key share one upstream call. Transient
// upstream errors are never cached.
type Resolver struct {
	upstream Geocoder
	store    domain.GeocodeCacheRepository
	logger   zerolog.Logger

	mu     sync.Mutex
	memo   *lru.Cache
	ttl    time.Duration
	negTTL time.Duration
	limit  time.Duration
	group  singleflight.Group
	now    func() time.Time
}

// NewResolver builds a Resolver. store may be nil.
func NewResolver(upstream Geocoder, store domain.GeocodeCacheRepository, cfg CacheConfig, logger zerolog.Logger) *Resolver {
	if cfg.Size <= 0 {
		cfg.Size = 1024
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.NegativeTTL <= 0 {
		cfg.NegativeTTL = time.Hour
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 30 * time.Second
	}
	return &Resolver{
		upstream: upstream,
		store:    store,
		logger:   logger,
		memo:     lru.New(cfg.Size),
		ttl:      cfg.TTL,
		negTTL:   cfg.NegativeTTL,
		limit:    cfg.LookupTimeout,
		now:      time.Now,
	}
}

// Resolve returns the point for q. It returns ErrNotFound when the upstream
// service has no match and domain.ErrInvalidInput for blank input.
func (r *Resolver) Resolve(ctx context.Context, q, country string) (Result, error) {
	if strings.TrimSpace(q) == "" {
		return Result{}, domain.ErrInvalidInput
	}
	if p, ok := ParseCoordinates(q); ok {
		return Result{Point: p, Source: SourceCoordinates}, nil
	}

	key := CacheKey(country, q)
	if res, ok, err := r.fromMemory(key); ok {
		return res, err
	}

	// The shared call must not inherit the cancellation of whichever caller
	// happened to start it.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(shared, r.limit)
		defer cancel()
		if res, ok, err := r.fromMemory(key); ok {
			return res, err
		}
		if res, ok, err := r.fromStore(lctx, key); ok {
			return res, err
		}
		return r.fromUpstream(lctx, key, q, country)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return Result{}, out.Err
		}
		return out.Val.(Result), nil
	}
}

func (r *Resolver) fromMemory(key string) (Result, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.memo.Get(key)
	if !ok {
		return Result{}, false, nil
	}
	e := v.(memoEntry)
	if r.now().After(e.expires) {
		r.memo.Remove(key)
		return Result{}, false, nil
	}
	if !e.found {
		return Result{}, true, ErrNotFound
	}
	return Result{Point: e.point, Source: SourceMemory}, true, nil
}

func (r *Resolver) fromStore(ctx context.Context, key string) (Result, bool, error) {
	if r.store == nil {
		return Result{}, false, nil
	}
	entry, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn().Err(err).Str("key", key).Msg("geocode store read failed")
		}
		return Result{}, false, nil
	}
	ttl := r.ttl
	if !entry.Found {
		ttl = r.negTTL
	}
	expires := entry.UpdatedAt.Add(ttl)
	if r.now().After(expires) {
		return Result{}, false, nil
	}
	r.remember(key, memoEntry{found: entry.Found, point: entry.Point, expires: expires})
	if !entry.Found {
		return Result{}, true, ErrNotFound
	}
	return Result{Point: entry.Point, Source: SourceStore}, true, nil
}

func (r *Resolver) fromUpstream(ctx context.Context, key, q, country string) (Result, error) {
	p, err := r.upstream.Lookup(ctx, Normalize(q), country)
	switch {
	case errors.Is(err, ErrNotFound):
		r.save(ctx, key, q, false, domain.Point{}, r.negTTL)
		return Result{}, ErrNotFound
	case err != nil:
		return Result{}, err
	}
	r.save(ctx, key, q, true, p, r.ttl)
	return Result{Point: p, Source: SourceUpstream}, nil
}

func (r *Resolver) save(ctx context.Context, key, q string, found bool, p domain.Point, ttl time.Duration) {
	now := r.now()
	r.remember(key, memoEntry{found: found, point: p, expires: now.Add(ttl)})
	if r.store == nil {
		return
	}
	err := r.store.Put(ctx, domain.GeocodeCacheEntry{Key: key, Query: strings.TrimSpace(q), Found: found, Point: p, UpdatedAt: now})
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("geocode store write failed")
	}
}

func (r *Resolver) remember(key string, e memoEntry) {
	r.mu.Lock()
	r.memo.Add(key, e)
	r.mu.Unlock()
}

// Len returns the number of in-memory entries.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memo.Len()
}
