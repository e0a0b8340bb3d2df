package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management-api/internal/config"
)

func testTokenManager(t *testing.T, accessTTL, refreshTTL time.Duration) *TokenManager {
	t.Helper()
	return NewTokenManager(&config.Config{
		Auth: config.Auth{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  accessTTL,
			RefreshTokenTTL: refreshTTL,
		},
	})
}

func TestIssueAndParse(t *testing.T) {
	m := testTokenManager(t, time.Hour, 24*time.Hour)

	access, refresh, err := m.Issue("alice@test.com")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	identity, err := m.Parse(access)
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", identity)

	identity, err = m.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", identity)
}

func TestParseRejectsWrongTokenType(t *testing.T) {
	m := testTokenManager(t, time.Hour, 24*time.Hour)

	access, refresh, err := m.Issue("alice@test.com")
	require.NoError(t, err)

	// A refresh token must not work where an access token is expected,
	// and vice versa.
	_, err = m.Parse(refresh)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = m.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestParseExpiredToken(t *testing.T) {
	// Negative TTL mints tokens that are already expired.
	expired := testTokenManager(t, -time.Minute, -time.Minute)

	access, _, err := expired.Issue("alice@test.com")
	require.NoError(t, err)

	_, err = expired.Parse(access)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestParseWrongSecret(t *testing.T) {
	m := testTokenManager(t, time.Hour, 24*time.Hour)
	access, _, err := m.Issue("alice@test.com")
	require.NoError(t, err)

	other := NewTokenManager(&config.Config{
		Auth: config.Auth{
			JWTSecret:       "a-different-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: time.Hour,
		},
	})

	_, err = other.Parse(access)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestParseMalformedToken(t *testing.T) {
	m := testTokenManager(t, time.Hour, 24*time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9"} {
		_, err := m.Parse(raw)
		assert.ErrorIs(t, err, ErrUnauthenticated, "token %q", raw)
	}
}

func TestUnauthenticatedAndUnauthorizedAreDistinct(t *testing.T) {
	// Handlers rely on the two sentinels never matching each other —
	// they map to 401 and 403 respectively.
	assert.False(t, errors.Is(ErrUnauthenticated, ErrUnauthorized))
	assert.False(t, errors.Is(ErrUnauthorized, ErrUnauthenticated))
}
