package student_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management-api/internal/auth"
	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/http/handlers/student"
	"github.com/aanand-mishra/student-management-api/internal/http/middleware"
	"github.com/aanand-mishra/student-management-api/internal/storage/memory"
	"github.com/aanand-mishra/student-management-api/internal/types"
)

type env struct {
	store  *memory.Memory
	tokens *auth.TokenManager
	mux    *http.ServeMux
}

// newEnv wires the student routes exactly as main.go does, over the
// in-memory backend.
func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.New()
	tokens := auth.NewTokenManager(&config.Config{
		Auth: config.Auth{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
	})
	roles := auth.NewRoles(store)
	gate := auth.NewGate(store)

	mux := http.NewServeMux()
	gated := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.Authenticate(tokens, h)
	}
	mux.HandleFunc("POST /api/students/signup", student.Signup(store))
	mux.HandleFunc("GET /api/students/", gated(student.GetList(store, roles, gate)))
	mux.HandleFunc("GET /api/students/student/{id}", gated(student.GetByID(store, roles, gate)))
	mux.HandleFunc("PUT /api/students/student/{id}", gated(student.Update(store, roles, gate)))
	mux.HandleFunc("DELETE /api/students/student/{id}", gated(student.Delete(store, roles, gate)))

	return &env{store: store, tokens: tokens, mux: mux}
}

func (e *env) token(t *testing.T, email string) string {
	t.Helper()
	access, _, err := e.tokens.Issue(email)
	require.NoError(t, err)
	return access
}

// do performs a request against the wired mux. An empty token leaves
// the Authorization header off entirely.
func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func TestSignupGetRoundTrip(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/students/signup", "", types.Student{
		Name: "Rakesh", Email: "rakesh@test.com", Password: "pass123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created types.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Greater(t, created.ID, int64(0))

	// Fetching with the same identity's token returns the exact
	// name/email/password submitted at creation.
	w = e.do(t, http.MethodGet,
		fmt.Sprintf("/api/students/student/%d", created.ID),
		e.token(t, "rakesh@test.com"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got types.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Rakesh", got.Name)
	assert.Equal(t, "rakesh@test.com", got.Email)
	assert.Equal(t, "pass123", got.Password)
}

func TestSignupDuplicateEmail(t *testing.T) {
	e := newEnv(t)

	body := types.Student{Name: "Rakesh", Email: "rakesh@test.com", Password: "pass123"}
	w := e.do(t, http.MethodPost, "/api/students/signup", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodPost, "/api/students/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate")
}

func TestSignupValidation(t *testing.T) {
	e := newEnv(t)

	// Missing password.
	w := e.do(t, http.MethodPost, "/api/students/signup", "",
		map[string]string{"name": "Rakesh", "email": "rakesh@test.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Password")

	// Empty body.
	w = e.do(t, http.MethodPost, "/api/students/signup", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListStudentsRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.CreateAdmin("admin@test.com", "hash", "admin")
	require.NoError(t, err)
	_, err = e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)

	// Student: denied with 403, not 401 — the token itself is fine.
	w := e.do(t, http.MethodGet, "/api/students/", e.token(t, "alice@test.com"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin: full list.
	w = e.do(t, http.MethodGet, "/api/students/", e.token(t, "admin@test.com"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var students []types.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &students))
	assert.Len(t, students, 1)
}

func TestGetStudentOwnershipCheck(t *testing.T) {
	e := newEnv(t)
	aliceID, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)
	bobID, err := e.store.CreateStudent("Bob", "bob@test.com", "p")
	require.NoError(t, err)

	aliceToken := e.token(t, "alice@test.com")

	w := e.do(t, http.MethodGet,
		fmt.Sprintf("/api/students/student/%d", aliceID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet,
		fmt.Sprintf("/api/students/student/%d", bobID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateStudentIsAdminOnly(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.CreateAdmin("admin@test.com", "hash", "admin")
	require.NoError(t, err)
	aliceID, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)

	update := types.Student{Name: "Alice B", Email: "alice@test.com", Password: "p2"}
	path := fmt.Sprintf("/api/students/student/%d", aliceID)

	// Self-update is denied — profile changes go through an admin.
	w := e.do(t, http.MethodPut, path, e.token(t, "alice@test.com"), update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPut, path, e.token(t, "admin@test.com"), update)
	require.Equal(t, http.StatusOK, w.Code)

	var got types.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Alice B", got.Name)
}

func TestDeleteStudent(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.CreateAdmin("admin@test.com", "hash", "admin")
	require.NoError(t, err)
	aliceID, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)

	path := fmt.Sprintf("/api/students/student/%d", aliceID)
	adminToken := e.token(t, "admin@test.com")

	w := e.do(t, http.MethodDelete, path, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGatedEndpointsRejectBadTokens(t *testing.T) {
	e := newEnv(t)
	aliceID, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)

	expiredTokens := auth.NewTokenManager(&config.Config{
		Auth: config.Auth{
			JWTSecret:       "test-secret", // same secret, already expired
			AccessTokenTTL:  -time.Minute,
			RefreshTokenTTL: -time.Minute,
		},
	})
	expired, _, err := expiredTokens.Issue("alice@test.com")
	require.NoError(t, err)

	path := fmt.Sprintf("/api/students/student/%d", aliceID)
	for name, token := range map[string]string{
		"missing": "",
		"garbage": "not-a-token",
		"expired": expired,
	} {
		w := e.do(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s token", name)
	}

	// None of the rejected requests may have executed the delete.
	_, err = e.store.GetStudentByID(aliceID)
	assert.NoError(t, err)
}
