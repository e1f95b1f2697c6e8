package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager(TokenConfig{
		Secret: "test-secret-at-least-16",
		Issuer: "user-auth-service",
		TTL:    time.Hour,
	})
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := newTestManager()

	token, expiresAt, err := m.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "user-auth-service", claims.Issuer)
}

func TestTokenManager_Expired(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Issue(1)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, _, err := newTestManager().Issue(1)
	require.NoError(t, err)

	other := NewTokenManager(TokenConfig{Secret: "another-secret-value", Issuer: "user-auth-service", TTL: time.Hour})
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	token, _, err := newTestManager().Issue(1)
	require.NoError(t, err)

	other := NewTokenManager(TokenConfig{Secret: "test-secret-at-least-16", Issuer: "someone-else", TTL: time.Hour})
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	m := newTestManager()

	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "user-auth-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret-at-least-16"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsMissingExpiry(t *testing.T) {
	m := newTestManager()

	claims := &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "user-auth-service"},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-at-least-16"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_Garbage(t *testing.T) {
	_, err := newTestManager().Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
