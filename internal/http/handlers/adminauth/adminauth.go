// Package adminauth contains the administrator authentication endpoints:
// signup, login (access + refresh token pair), and refresh.
//
// Passwords are hashed with bcrypt before they reach the store, and
// login failures are deliberately indistinguishable — a wrong password
// and an unknown email both answer "invalid email or password", so the
// endpoint cannot be used to probe which admin accounts exist.
package adminauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/student-management-api/internal/auth"
	"github.com/aanand-mishra/student-management-api/internal/http/middleware"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
	"github.com/aanand-mishra/student-management-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// Signup handles POST /api/auth/admin/signup
// Creates an administrator account. No auth required.
//
// Request body (JSON):
//
//	{ "email": "root@test.com", "password": "s3cret", "type_acct": "admin" }
//
// Success response (201 Created):
//
//	{ "id": 1, "email": "root@test.com", "type_acct": "admin" }
//
// Error responses:
//
//	400 — empty body, malformed JSON, validation failure, or a
//	      duplicate email
//
// ─────────────────────────────────────────────────────────────────────────────
func Signup(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("admin signup",
			slog.String("request_id", middleware.RequestIDFrom(r.Context())))

		var req types.AdminSignupRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			response.WriteError(w, fmt.Errorf("hash password: %w", err))
			return
		}

		lastID, err := store.CreateAdmin(req.Email, string(hash), req.TypeAcct)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("admin created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, types.Admin{
			ID:       lastID,
			Email:    req.Email,
			TypeAcct: req.TypeAcct,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Login handles POST /api/auth/admin/login
// Verifies credentials and mints an access + refresh token pair.
//
// Success response (201 Created):
//
//	{ "access_token": "…", "refresh_token": "…", "type": "admin" }
//
// Error responses:
//
//	400 — empty body, malformed JSON, validation failure
//	401 — unknown email or wrong password (the same message for both)
//
// ─────────────────────────────────────────────────────────────────────────────
func Login(store storage.Storage, tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		if err := validator.New().Struct(req); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		slog.Info("admin login attempt", slog.String("email", req.Email))

		admin, err := store.GetAdminByEmail(req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteError(w,
					fmt.Errorf("invalid email or password: %w", auth.ErrUnauthenticated))
				return
			}
			response.WriteError(w, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword(
			[]byte(admin.Password), []byte(req.Password)); err != nil {
			response.WriteError(w,
				fmt.Errorf("invalid email or password: %w", auth.ErrUnauthenticated))
			return
		}

		access, refresh, err := tokens.Issue(admin.Email)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("admin logged in", slog.String("email", admin.Email))
		response.WriteJSON(w, http.StatusCreated, types.TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			Type:         admin.TypeAcct,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Refresh handles POST /api/auth/admin/refresh
// Exchanges a valid refresh token (presented as the bearer credential)
// for a fresh access token. An access token is rejected here — the
// token_type claim keeps the two kinds apart.
//
// Success response (200 OK):
//
//	{ "access_token": "…" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Refresh(tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := middleware.BearerToken(r)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		identity, err := tokens.ParseRefresh(raw)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		access, _, err := tokens.Issue(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("token refreshed", slog.String("identity", identity))
		response.WriteJSON(w, http.StatusOK, map[string]string{"access_token": access})
	}
}
