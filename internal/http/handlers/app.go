package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"strays/internal/analytics"
	"strays/internal/auth"
	"strays/internal/chat"
	"strays/internal/domain"
	"strays/internal/geocode"
	"strays/internal/infra/errtrack"
	"strays/internal/intake"
	"strays/internal/middleware"
)

const maxJSONBody = 1 << 20

// Locator resolves free text or "lat,lng" to a point.
type Locator interface {
	Resolve(ctx context.Context, q, country string) (geocode.Result, error)
}

// URLer maps stored file keys to public URLs.
type URLer interface {
	URL(key string) string
}

// App carries the dependencies shared by all handlers.
type App struct {
	Logger         zerolog.Logger
	Tracker        *errtrack.Tracker
	Tokens         *auth.Tokens
	Users          domain.UserRepository
	Donations      domain.DonationRepository
	Reports        domain.ReportRepository
	Events         domain.EventRepository
	Feedback       domain.FeedbackRepository
	Intake         *intake.Service
	Chat           *chat.Service
	Notifier       intake.Notifier
	Geocoder       Locator
	Analytics      *analytics.Aggregator
	Maps           *analytics.MapBuilder
	Files          URLer
	DefaultCountry string
	MaxUpload      int64

	now func() time.Time
}

func (a *App) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	middleware.WriteError(w, code, errCode, message)
}

// fail maps domain errors to HTTP responses. Anything unrecognised is logged
// and reported, and the client only sees a generic message.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, context.Canceled):
		a.error(w, 499, "canceled", "request canceled")
	default:
		rid := middleware.RequestIDFromContext(r.Context())
		a.Logger.Error().Err(err).Str("request_id", rid).Str("path", r.URL.Path).Msg("request failed")
		a.Tracker.Capture(err, r, map[string]string{"request_id": rid})
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) actor(r *http.Request) (intake.Actor, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return intake.Actor{}, false
	}
	return intake.Actor{ID: p.UserID, Username: p.Username, Role: p.Role}, true
}

func (a *App) identity(r *http.Request) (chat.Identity, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return chat.Identity{}, false
	}
	return chat.Identity{UserID: p.UserID, Username: p.Username, Role: string(p.Role)}, true
}

// country returns the lower-case country bias for geocoding.
func (a *App) country(r *http.Request) string {
	if c := middleware.CountryFromContext(r.Context()); c != "" {
		return strings.ToLower(c)
	}
	return strings.ToLower(a.DefaultCountry)
}

func queryInt(r *http.Request, key string, fallback, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return fallback
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func parseOptionalTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: time must be RFC 3339 or YYYY-MM-DDTHH:MM", domain.ErrInvalidInput)
}
