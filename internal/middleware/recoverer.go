package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"strays/internal/infra/errtrack"
)

// Recoverer turns panics into 500 responses and reports them.
func Recoverer(l zerolog.Logger, tracker *errtrack.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				l.Error().
					Str("request_id", RequestIDFromContext(r.Context())).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				tracker.CapturePanic(rec, r)
				WriteError(w, http.StatusInternalServerError, "internal", "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
