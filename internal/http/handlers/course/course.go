// Package course contains the student-facing course endpoints.
//
// All three handlers run behind the Authenticate middleware. The gate
// decides the rest: any authenticated caller may browse the catalogue,
// but only the owning student (or an admin) touches "my courses", and
// a student may create at most one course — for themselves.
package course

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-management-api/internal/auth"
	"github.com/aanand-mishra/student-management-api/internal/http/middleware"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
	"github.com/aanand-mishra/student-management-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// GetAll handles GET /api/course/getall_course
// Returns every course in the catalogue. Read-only, open to any
// authenticated caller regardless of role.
// ─────────────────────────────────────────────────────────────────────────────
func GetAll(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.Identity(r.Context())
		slog.Info("listing all courses", slog.String("identity", identity))

		role, err := roles.Resolve(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		if err := gate.Authorize(identity, role, auth.ActionListCourses, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		courses, err := store.GetCourses()
		if err != nil {
			slog.Error("error getting courses", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, courses)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetMine handles GET /api/course/getme/get_course
// Returns the courses owned by the calling student. An admin without a
// student record gets an empty list.
// ─────────────────────────────────────────────────────────────────────────────
func GetMine(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.Identity(r.Context())
		slog.Info("listing own courses", slog.String("identity", identity))

		role, err := roles.Resolve(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		// Target is the caller's own email, so "self" holds trivially
		// for students; admins pass via the admin column.
		if err := gate.Authorize(identity, role, auth.ActionListOwnCourses,
			auth.Target{Email: identity}); err != nil {
			response.WriteError(w, err)
			return
		}

		student, err := store.GetStudentByEmail(identity)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Authorized but owns nothing (e.g. a pure admin).
				response.WriteJSON(w, http.StatusOK, []types.Course{})
				return
			}
			response.WriteError(w, err)
			return
		}

		courses, err := store.GetCoursesByStudentID(student.ID)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, courses)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Create handles POST /api/course/create_course
// Creates a course owned by the calling student.
//
// Request body (JSON):
//
//	{ "name": "BackEnd", "instructor": "Ada" }
//
// The owner is always the caller — the body carries no student id. The
// gate enforces the one-course rule: a second create by the same
// student is denied with "you are not allowed to create a course again".
// ─────────────────────────────────────────────────────────────────────────────
func Create(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.Identity(r.Context())
		slog.Info("creating a course", slog.String("identity", identity))

		role, err := roles.Resolve(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		if err := gate.Authorize(identity, role, auth.ActionCreateCourse,
			auth.Target{Email: identity}); err != nil {
			response.WriteError(w, err)
			return
		}

		var req types.CreateCourseRequest
		err = json.NewDecoder(r.Body).Decode(&req)
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

		// The course belongs to the caller's student record.
		student, err := store.GetStudentByEmail(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		lastID, err := store.CreateCourse(req.Name, req.Instructor, student.ID)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("course created",
			slog.Int64("id", lastID),
			slog.Int64("student_id", student.ID))

		created, err := store.GetCourseByID(lastID)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusCreated, created)
	}
}
