package course_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management-api/internal/auth"
	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/http/handlers/course"
	"github.com/aanand-mishra/student-management-api/internal/http/middleware"
	"github.com/aanand-mishra/student-management-api/internal/storage/memory"
	"github.com/aanand-mishra/student-management-api/internal/types"
)

type env struct {
	store  *memory.Memory
	tokens *auth.TokenManager
	mux    *http.ServeMux
}

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
	mux.HandleFunc("GET /api/course/getall_course", gated(course.GetAll(store, roles, gate)))
	mux.HandleFunc("GET /api/course/getme/get_course", gated(course.GetMine(store, roles, gate)))
	mux.HandleFunc("POST /api/course/create_course", gated(course.Create(store, roles, gate)))

	return &env{store: store, tokens: tokens, mux: mux}
}

func (e *env) token(t *testing.T, email string) string {
	t.Helper()
	access, _, err := e.tokens.Issue(email)
	require.NoError(t, err)
	return access
}

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

func TestGetAllOpenToAnyRole(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.CreateAdmin("admin@test.com", "hash", "admin")
	require.NoError(t, err)
	aliceID, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)
	_, err = e.store.CreateCourse("BackEnd", "Ada", aliceID)
	require.NoError(t, err)

	for _, email := range []string{"admin@test.com", "alice@test.com"} {
		w := e.do(t, http.MethodGet, "/api/course/getall_course", e.token(t, email), nil)
		require.Equal(t, http.StatusOK, w.Code, "caller %s", email)

		var courses []types.Course
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &courses))
		assert.Len(t, courses, 1)
	}
}

func TestGetAllRequiresToken(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/course/getall_course", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMineReturnsOnlyOwnCourses(t *testing.T) {
	e := newEnv(t)
	aliceID, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)
	bobID, err := e.store.CreateStudent("Bob", "bob@test.com", "p")
	require.NoError(t, err)
	_, err = e.store.CreateCourse("BackEnd", "Ada", aliceID)
	require.NoError(t, err)
	_, err = e.store.CreateCourse("FrontEnd", "Grace", bobID)
	require.NoError(t, err)

	w := e.do(t, http.MethodGet, "/api/course/getme/get_course",
		e.token(t, "alice@test.com"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var courses []types.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "BackEnd", courses[0].Name)
}

func TestGetMineForPureAdminIsEmpty(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.CreateAdmin("admin@test.com", "hash", "admin")
	require.NoError(t, err)

	// An admin with no student record is authorized but owns nothing.
	w := e.do(t, http.MethodGet, "/api/course/getme/get_course",
		e.token(t, "admin@test.com"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var courses []types.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &courses))
	assert.Empty(t, courses)
}

func TestCreateCourseOwnedByCaller(t *testing.T) {
	e := newEnv(t)
	aliceID, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)

	w := e.do(t, http.MethodPost, "/api/course/create_course",
		e.token(t, "alice@test.com"),
		types.CreateCourseRequest{Name: "BackEnd", Instructor: "Ada"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created types.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "BackEnd", created.Name)
	assert.Equal(t, aliceID, created.StudentID)
}

func TestCreateSecondCourseDenied(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)

	token := e.token(t, "alice@test.com")
	body := types.CreateCourseRequest{Name: "BackEnd", Instructor: "Ada"}

	w := e.do(t, http.MethodPost, "/api/course/create_course", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	// One course per student: the second create is a 403 with the
	// canonical message, and nothing is written.
	w = e.do(t, http.MethodPost, "/api/course/create_course", token,
		types.CreateCourseRequest{Name: "FrontEnd", Instructor: "Grace"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not allowed to create a course again")

	courses, err := e.store.GetCourses()
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestCreateCourseValidation(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)

	token := e.token(t, "alice@test.com")

	// Missing instructor.
	w := e.do(t, http.MethodPost, "/api/course/create_course", token,
		map[string]string{"name": "BackEnd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Empty body.
	w = e.do(t, http.MethodPost, "/api/course/create_course", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
