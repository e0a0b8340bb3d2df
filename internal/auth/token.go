// Package auth implements the access-control core of the API:
//
//   - TokenManager — extracts a caller identity (the subject email) from
//     a signed bearer token, and mints new tokens at login.
//   - Roles — resolves an identity to Admin / Student / Both / None by
//     querying the store.
//   - Gate — the per-action allow/deny decision over (identity, role,
//     action, target).
//
// Two failure modes must never be confused:
//
//	ErrUnauthenticated — no token, or a token we cannot trust (missing,
//	                     malformed, expired, bad signature). Deny all.
//	ErrUnauthorized    — a trusted identity without sufficient
//	                     privilege for the requested action.
//
// Handlers map the first to HTTP 401 and the second to 403.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/aanand-mishra/student-management-api/internal/config"
)

var (
	// ErrUnauthenticated means the caller presented no usable credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnauthorized means the caller is known but not permitted.
	ErrUnauthorized = errors.New("unauthorized")
)

// Token types carried in the token_type claim. An access token can
// never be replayed against the refresh endpoint, and vice versa.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is the JWT payload. Subject carries the identity email.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-SHA256 signed tokens.
// It is stateless and safe for concurrent use.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a TokenManager from the auth section of the
// application config.
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.Auth.JWTSecret),
		accessTTL:  cfg.Auth.AccessTokenTTL,
		refreshTTL: cfg.Auth.RefreshTokenTTL,
	}
}

// Issue mints an access + refresh token pair for the given identity.
func (m *TokenManager) Issue(identity string) (access, refresh string, err error) {
	access, err = m.sign(identity, tokenTypeAccess, m.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("issue access token: %w", err)
	}
	refresh, err = m.sign(identity, tokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh token: %w", err)
	}
	return access, refresh, nil
}

func (m *TokenManager) sign(identity, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies an access token and returns its subject identity.
// Every failure — missing subject, wrong type, expiry, bad signature —
// collapses into ErrUnauthenticated so callers deny uniformly.
func (m *TokenManager) Parse(raw string) (string, error) {
	return m.parse(raw, tokenTypeAccess)
}

// ParseRefresh verifies a refresh token and returns its subject identity.
func (m *TokenManager) ParseRefresh(raw string) (string, error) {
	return m.parse(raw, tokenTypeRefresh)
}

func (m *TokenManager) parse(raw, wantType string) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			// Only accept the method we sign with. Without this check a
			// forged token could declare alg=none or an RSA variant and
			// trick the verifier into accepting it.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return m.secret, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if claims.TokenType != wantType {
		return "", fmt.Errorf("%w: wrong token type", ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	return claims.Subject, nil
}
