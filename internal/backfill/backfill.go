// Package backfill resolves coordinates for donations and reports that were
// stored without them.
package backfill

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"strays/internal/domain"
	"strays/internal/geocode"
)

// Locator resolves free text to a point.
type Locator interface {
	Resolve(ctx context.Context, q, country string) (geocode.Result, error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
	Country   string
}

// Stats counts the outcome of one pass.
type Stats struct {
	Resolved   int
	Unresolved int
	Failed     int
}

// Worker periodically geocodes unlocated records. Records with no match are
// skipped for the rest of the process lifetime so they cannot starve the
// batch; transient failures are retried on the next tick.
type Worker struct {
	donations domain.DonationRepository
	reports   domain.ReportRepository
	locator   Locator
	cfg       Config
	logger    zerolog.Logger

	skip map[string]struct{}
}

func New(donations domain.DonationRepository, reports domain.ReportRepository, locator Locator, cfg Config, logger zerolog.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	return &Worker{
		donations: donations,
		reports:   reports,
		locator:   locator,
		cfg:       cfg,
		logger:    logger,
		skip:      make(map[string]struct{}),
	}
}

// Run processes a batch immediately and then on every tick until ctx ends.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.cfg.Interval).Int("batch", w.cfg.BatchSize).Msg("backfill: started")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	for {
		stats, err := w.RunOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("backfill: pass failed")
		} else if stats.Resolved+stats.Unresolved+stats.Failed > 0 {
			w.logger.Info().
				Int("resolved", stats.Resolved).
				Int("unresolved", stats.Unresolved).
				Int("failed", stats.Failed).
				Msg("backfill: pass complete")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce resolves up to BatchSize reports and BatchSize donations.
func (w *Worker) RunOnce(ctx context.Context) (Stats, error) {
	var stats Stats
	limit := w.cfg.BatchSize + len(w.skip)

	reports, err := w.reports.ListUnlocated(ctx, limit)
	if err != nil {
		return stats, err
	}
	n := 0
	for _, r := range reports {
		if n == w.cfg.BatchSize {
			break
		}
		if _, skipped := w.skip[r.ID]; skipped {
			continue
		}
		n++
		if err := w.resolve(ctx, r.ID, r.Location, &stats, w.reports.SetLocation); err != nil {
			return stats, err
		}
	}

	donations, err := w.donations.ListUnlocated(ctx, limit)
	if err != nil {
		return stats, err
	}
	n = 0
	for _, d := range donations {
		if n == w.cfg.BatchSize {
			break
		}
		if _, skipped := w.skip[d.ID]; skipped {
			continue
		}
		n++
		if err := w.resolve(ctx, d.ID, d.PickupLocation, &stats, w.donations.SetLocation); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (w *Worker) resolve(ctx context.Context, id, location string, stats *Stats, store func(context.Context, string, domain.Point) error) error {
	res, err := w.locator.Resolve(ctx, location, w.cfg.Country)
	switch {
	case err == nil:
	case errors.Is(err, geocode.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		stats.Unresolved++
		w.skip[id] = struct{}{}
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		stats.Failed++
		w.logger.Warn().Err(err).Str("id", id).Str("location", location).Msg("backfill: geocode failed")
		return nil
	}
	if err := store(ctx, id, res.Point); err != nil {
		stats.Failed++
		w.logger.Warn().Err(err).Str("id", id).Msg("backfill: store coordinates")
		return nil
	}
	stats.Resolved++
	return nil
}
