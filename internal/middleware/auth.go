package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"strays/internal/auth"
	"strays/internal/domain"
)

type principalKey struct{}

// Principal is the authenticated caller taken from a verified token.
type Principal struct {
	UserID   string
	Username string
	Role     domain.UserRole
}

// Authenticate verifies a bearer token from the Authorization header. When
// allowQuery is set the access_token query parameter is accepted as well,
// since browsers cannot set headers on websocket upgrades.
func Authenticate(tokens *auth.Tokens, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" && allowQuery {
				raw = strings.TrimSpace(r.URL.Query().Get("access_token"))
			}
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "missing authorization")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			p := Principal{UserID: claims.UserID, Username: claims.Username, Role: domain.UserRole(claims.Role)}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

// UserLookup loads the current state of an account.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// RequireRole rejects principals whose role is not listed. The role is read
// from the stored account, not the token, so a demotion applies at once.
func RequireRole(users UserLookup, roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "missing user context")
				return
			}
			u, err := users.GetByID(r.Context(), p.UserID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				WriteError(w, http.StatusUnauthorized, "unauthorized", "account no longer exists")
				return
			case err != nil:
				WriteError(w, http.StatusInternalServerError, "internal", "internal server error")
				return
			}
			p.Role, p.Username = u.Role, u.Username
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
					return
				}
			}
			WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	if strings.TrimSpace(p.UserID) == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func UserIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes the JSON error envelope shared with the handlers.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: message}})
}
