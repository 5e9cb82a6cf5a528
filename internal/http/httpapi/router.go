package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"strays/internal/domain"
	"strays/internal/http/handlers"
	"strays/internal/middleware"
	"strays/internal/web"
)

// Options configures the cross-cutting middleware.
type Options struct {
	CORSOrigins    []string
	AuthRateLimit  int
	CountryLookup  middleware.CountryLookup
	DefaultCountry string
	// StaticDir serves uploaded files under /static/ when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		middleware.Recoverer(app.Logger, app.Tracker),
		middleware.CORS(opts.CORSOrigins),
		middleware.Region(opts.DefaultCountry, opts.CountryLookup),
	)

	r.Get("/manifest.json", web.Manifest)
	r.Get("/sw.js", web.ServiceWorker)
	if opts.StaticDir != "" {
		r.Handle("/static/*", staticFiles(opts.StaticDir))
	}

	r.Route("/v1", func(r chi.Router) {
		// Health
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.AuthRateLimit, time.Minute))
			r.Post("/register", app.AuthRegister)
			r.Post("/login", app.AuthLogin)
		})

		// Websocket clients cannot send headers, so this route alone takes the token from the query.
		r.With(middleware.Authenticate(app.Tokens, true)).Get("/chat/ws", app.ChatWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(app.Tokens, false))

			r.Get("/me", app.Me)
			r.Put("/me", app.MeUpdate)

			r.Route("/donations", func(r chi.Router) {
				r.Post("/", app.DonationsCreate)
				r.Get("/", app.DonationsList)
				r.Get("/map", app.DonationsMap)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Post("/", app.ReportsCreate)
				r.Get("/", app.ReportsList)
				r.Get("/map", app.ReportsMap)
				r.Get("/{id}", app.ReportGet)
				r.With(middleware.RequireRole(app.Users, domain.UserRoleVolunteer, domain.UserRoleAdmin)).
					Patch("/{id}/status", app.ReportStatus)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", app.EventsList)
				r.Post("/{id}/signup", app.EventSignup)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(app.Users, domain.UserRoleAdmin))
					r.Post("/", app.EventCreate)
					r.Put("/{id}", app.EventUpdate)
					r.Post("/{id}/cancel", app.EventCancel)
				})
			})

			r.Route("/feedback", func(r chi.Router) {
				r.Post("/", app.FeedbackCreate)
				r.Get("/", app.FeedbackList)
				r.Get("/sentiment", app.FeedbackSentiment)
			})

			r.Get("/chat/{channel}/history", app.ChatHistory)
			r.Get("/geocode", app.Geocode)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(app.Users, domain.UserRoleAdmin))
				r.Get("/stats", app.StatsSummary)
				r.Get("/leaderboard", app.Leaderboard)
				r.Put("/users/{id}/role", app.UserSetRole)
				r.Get("/admin/export", app.AdminExport)
			})
		})
	})

	return r
}
