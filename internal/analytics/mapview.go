package analytics

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"strays/internal/domain"
	"strays/internal/geocode"
)

// Locator resolves free text to a point.
type Locator interface {
	Resolve(ctx context.Context, q, country string) (geocode.Result, error)
}

// Marker is a map pin. Approximate marks pins placed at the default center
// because the record's location could not be resolved.
type Marker struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Status      string  `json:"status,omitempty"`
	Approximate bool    `json:"approximate,omitempty"`
}

// ReportMap is the report map payload.
type ReportMap struct {
	Markers     []Marker     `json:"markers"`
	Heat        [][3]float64 `json:"heat"`
	AnimalTypes []string     `json:"animal_types"`
	Selected    string       `json:"selected_animal"`
}

// MapBuilder turns stored records into map markers. Records without
// coordinates are geocoded inline, at most inlineLimit per request; resolved
// coordinates are written back, the rest fall back to the default center.
type MapBuilder struct {
	reports     domain.ReportRepository
	donations   domain.DonationRepository
	locator     Locator
	center      domain.Point
	inlineLimit int
	logger      zerolog.Logger
}

func NewMapBuilder(reports domain.ReportRepository, donations domain.DonationRepository, locator Locator, center domain.Point, inlineLimit int, logger zerolog.Logger) *MapBuilder {
	return &MapBuilder{
		reports:     reports,
		donations:   donations,
		locator:     locator,
		center:      center,
		inlineLimit: inlineLimit,
		logger:      logger,
	}
}

// Reports builds report markers and heat points, optionally filtered by an
// animal type substring.
func (m *MapBuilder) Reports(ctx context.Context, animalType, country string) (*ReportMap, error) {
	var (
		reports []domain.Report
		types   []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reports, err = m.reports.List(gctx, domain.ReportFilter{AnimalType: animalType, Limit: domain.ReportLimitAll})
		return err
	})
	g.Go(func() (err error) {
		types, err = m.reports.AnimalTypes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ReportMap{
		Markers:     make([]Marker, 0, len(reports)),
		Heat:        make([][3]float64, 0, len(reports)),
		AnimalTypes: types,
		Selected:    animalType,
	}
	if out.AnimalTypes == nil {
		out.AnimalTypes = []string{}
	}
	budget := m.inlineLimit
	for _, r := range reports {
		p, approximate := m.center, true
		if r.Point != nil {
			p, approximate = *r.Point, false
		} else if budget > 0 {
			budget--
			if resolved, ok := m.resolve(ctx, r.Location, country); ok {
				p, approximate = resolved, false
				if err := m.reports.SetLocation(ctx, r.ID, p); err != nil {
					m.logger.Warn().Err(err).Str("report_id", r.ID).Msg("store report coordinates")
				}
			}
		}
		out.Markers = append(out.Markers, Marker{
			ID:          r.ID,
			Lat:         p.Lat,
			Lng:         p.Lng,
			Title:       r.AnimalType,
			Description: r.Description,
			Location:    r.Location,
			Status:      string(r.Status),
			Approximate: approximate,
		})
		out.Heat = append(out.Heat, [3]float64{p.Lat, p.Lng, 1})
	}
	return out, nil
}

// Donations builds donation markers. Donations whose pickup location cannot be
// resolved are left off the map.
func (m *MapBuilder) Donations(ctx context.Context, country string) ([]Marker, error) {
	donations, err := m.donations.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	markers := make([]Marker, 0, len(donations))
	budget := m.inlineLimit
	for _, d := range donations {
		var p domain.Point
		switch {
		case d.Location != nil:
			p = *d.Location
		case budget > 0 && d.PickupLocation != "":
			budget--
			resolved, ok := m.resolve(ctx, d.PickupLocation, country)
			if !ok {
				continue
			}
			p = resolved
			if err := m.donations.SetLocation(ctx, d.ID, p); err != nil {
				m.logger.Warn().Err(err).Str("donation_id", d.ID).Msg("store donation coordinates")
			}
		default:
			continue
		}
		markers = append(markers, Marker{
			ID:          d.ID,
			Lat:         p.Lat,
			Lng:         p.Lng,
			Title:       "Donation: " + d.Description,
			Description: d.FoodType,
			Location:    d.PickupLocation,
		})
	}
	return markers, nil
}

func (m *MapBuilder) resolve(ctx context.Context, q, country string) (domain.Point, bool) {
	if m.locator == nil {
		return domain.Point{}, false
	}
	res, err := m.locator.Resolve(ctx, q, country)
	switch {
	case err == nil:
		return res.Point, true
	case errors.Is(err, geocode.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		m.logger.Info().Str("location", q).Msg("location not found")
	default:
		m.logger.Warn().Err(err).Str("location", q).Msg("geocode failed")
	}
	return domain.Point{}, false
}
