package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strays/internal/domain"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

func TestHashPasswordRejectsShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, exp, err := tokens.Make(domain.User{ID: "u1", Username: "asha", Role: domain.UserRoleVolunteer})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "asha", claims.Username)
	assert.Equal(t, "volunteer", claims.Role)
}

func TestTokenExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }
	raw, _, err := tokens.Make(domain.User{ID: "u1", Role: domain.UserRoleDonor})
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Parse(raw)
	assert.True(t, errors.Is(err, ErrBadToken))
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestTokenWrongSecret(t *testing.T) {
	raw, _, err := NewTokens("one", time.Hour).Make(domain.User{ID: "u1"})
	require.NoError(t, err)
	_, err = NewTokens("two", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestTokenRejectsNoneAlg(t *testing.T) {
	c := Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokens("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestParseEmpty(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Parse("  ")
	assert.ErrorIs(t, err, ErrBadToken)
}
