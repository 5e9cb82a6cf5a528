package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strays/internal/auth"
	"strays/internal/domain"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	token, _, err := tokens.Make(domain.User{ID: "u1", Username: "asha", Role: domain.UserRoleVolunteer})
	require.NoError(t, err)

	var got Principal
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		Authenticate(tokens, false)(ok).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, Principal{UserID: "u1", Username: "asha", Role: domain.UserRoleVolunteer}, got)
	})

	t.Run("query token only when allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/chat/ws?access_token="+token, nil)
		rec := httptest.NewRecorder()
		Authenticate(tokens, false)(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = httptest.NewRecorder()
		Authenticate(tokens, true)(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		Authenticate(tokens, false)(ok).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decodeError(t, rec).Code)
	})
}

type userTable map[string]domain.User

func (u userTable) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func TestRequireRole(t *testing.T) {
	users := userTable{
		"u1": {ID: "u1", Username: "asha", Role: domain.UserRoleDonor},
		"u2": {ID: "u2", Username: "ravi", Role: domain.UserRoleAdmin},
	}
	var seen Principal
	h := RequireRole(users, domain.UserRoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(p *Principal) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
		if p != nil {
			req = req.WithContext(ContextWithPrincipal(req.Context(), *p))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&Principal{UserID: "u1", Role: domain.UserRoleDonor}))
	assert.Equal(t, http.StatusNoContent, serve(&Principal{UserID: "u2", Role: domain.UserRoleAdmin}))
	assert.Equal(t, "ravi", seen.Username)

	// Token claims are stale once the stored role changes.
	assert.Equal(t, http.StatusForbidden, serve(&Principal{UserID: "u1", Role: domain.UserRoleAdmin}))
	assert.Equal(t, http.StatusUnauthorized, serve(&Principal{UserID: "gone", Role: domain.UserRoleAdmin}))
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/v1/donations", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "rid-1", rec.Header().Get("X-Request-ID"))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, float64(http.StatusCreated), line["status"])
	assert.Equal(t, float64(2), line["bytes"])
}

func TestRequestIDRejectsUnsafeValues(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	for _, incoming := range []string{"", "bad id\r\nX-Injected: 1", strings.Repeat("a", 65), "<script>"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header[RequestIDHeader] = []string{incoming}
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		_, err := uuid.Parse(got)
		assert.NoError(t, err, "incoming %q", incoming)
		assert.Equal(t, got, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "edge-7f3a:01")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "edge-7f3a:01", got)
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zerolog.Nop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeError(t, rec).Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://strays.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/v1/reports", nil)
	req.Header.Set("Origin", "https://strays.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://strays.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
