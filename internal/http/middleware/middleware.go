// Package middleware contains the HTTP cross-cutting layers that run
// before any handler body:
//
//   - Authenticate: extracts and verifies the bearer token, then stores
//     the caller identity in the request context. A handler wrapped by
//     Authenticate can assume Identity(r.Context()) is a verified
//     subject — it never sees an unauthenticated request.
//
//   - RequestID: tags every request with a UUID for log correlation and
//     logs one line per request.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aanand-mishra/student-management-api/internal/auth"
	"github.com/aanand-mishra/student-management-api/internal/utils/response"
)

// contextKey is unexported so no other package can collide with (or
// forge) our context values.
type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "request_id"
)

// Identity returns the verified caller identity placed in the context
// by Authenticate, or "" if the request never passed through it.
func Identity(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}

// RequestIDFrom returns the request id assigned by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Authenticate wraps a handler so it only runs for requests carrying a
// valid access token in "Authorization: Bearer <token>".
//
// A missing, malformed, expired, or badly signed token is rejected with
// 401 before the handler body executes — failure means deny, never
// "treat as anonymous".
func Authenticate(tokens *auth.TokenManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := BearerToken(r)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		identity, err := tokens.Parse(raw)
		if err != nil {
			slog.Debug("rejected token",
				slog.String("request_id", RequestIDFrom(r.Context())),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// BearerToken pulls the raw token out of the Authorization header.
// Exposed for the refresh handler, which verifies a refresh token
// rather than an access token.
func BearerToken(r *http.Request) (string, error) {
	const prefix = "Bearer "

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing authorization header: %w", auth.ErrUnauthenticated)
	}
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("authorization header is not a bearer token: %w",
			auth.ErrUnauthenticated)
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return "", fmt.Errorf("empty bearer token: %w", auth.ErrUnauthenticated)
	}
	return raw, nil
}

// RequestID wraps the whole router. Every request gets a fresh UUID,
// echoed in the X-Request-ID response header and attached to the
// request context so downstream logs can correlate.
func RequestID(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		log.Info("request",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
