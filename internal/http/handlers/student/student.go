// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a database or
// the authorization gate. To inject dependencies we use a factory
// function that:
//  1. Accepts dependencies (storage, roles, gate)
//  2. Returns a function with the exact signature the router needs
//
// Because the inner function "closes over" the outer parameters, it can
// access them even after the factory call has returned. The factory is
// called ONCE at startup; the handler it returns runs on EVERY request.
//
// Except for Signup, every handler here runs behind the Authenticate
// middleware, so middleware.Identity always yields a verified subject.
// The flow inside each gated handler is uniform:
//
//	identity → resolve role → gate.Authorize → storage call → response
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-management-api/internal/auth"
	"github.com/aanand-mishra/student-management-api/internal/http/middleware"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
	"github.com/aanand-mishra/student-management-api/internal/utils/response"
)

// ─────────────────────────────────────────────────────────────────────────────
// Signup handles POST /api/students/signup
// Creates a new student from the JSON request body. No auth required —
// this is how students get an account in the first place.
//
// Request body (JSON):
//
//	{ "name": "Rakesh", "email": "rakesh@test.com", "password": "pass123" }
//
// Success response (201 Created): the stored student record.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, failed validation,
//	                   or an already-taken email
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Signup(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("student signup",
			slog.String("request_id", middleware.RequestIDFrom(r.Context())))

		var student types.Student
		err := json.NewDecoder(r.Body).Decode(&student)
		if errors.Is(err, io.EOF) {
			// io.EOF means the body was completely empty — nothing to decode.
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// validator.New().Struct(v) checks all validate:"..." tags on v.
		if err := validator.New().Struct(student); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		// The store enforces email uniqueness atomically at write time;
		// a duplicate surfaces as storage.ErrConflict (→ 400).
		lastID, err := store.CreateStudent(student.Name, student.Email, student.Password)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))

		// Echo the stored record so the client sees exactly what was saved.
		created, err := store.GetStudentByID(lastID)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students/
// Returns a JSON array of all students. Admins only.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.Identity(r.Context())
		slog.Info("listing all students", slog.String("identity", identity))

		role, err := roles.Resolve(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		if err := gate.Authorize(identity, role, auth.ActionListStudents, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		students, err := store.GetStudents()
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/student/{id}
// Fetches a single student. Admins may fetch anyone; a student may only
// fetch their own record.
//
// Error responses:
//
//	400 — id is not a valid integer
//	403 — authenticated student asking for someone else's record
//	404 — (admins only) no student with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.PathValue("id") extracts the {id} segment from the URL
		// (Go 1.22+ named path parameters in the ServeMux pattern).
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		identity := middleware.Identity(r.Context())
		role, err := roles.Resolve(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		// The gate checks ownership against the target id, so a student
		// asking for a record that is not theirs is denied here.
		if err := gate.Authorize(identity, role, auth.ActionGetStudent,
			auth.Target{StudentID: intID}); err != nil {
			response.WriteError(w, err)
			return
		}

		student, err := store.GetStudentByID(intID)
		if err != nil {
			slog.Error("error getting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/student/{id}
// Replaces ALL fields of an existing student. Admins only — a student
// cannot update their own profile.
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		identity := middleware.Identity(r.Context())
		role, err := roles.Resolve(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		if err := gate.Authorize(identity, role, auth.ActionUpdateStudent,
			auth.Target{StudentID: intID}); err != nil {
			response.WriteError(w, err)
			return
		}

		// Decode the update payload
		var student types.Student
		err = json.NewDecoder(r.Body).Decode(&student)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Validate the update payload using the same rules as creation
		if err := validator.New().Struct(student); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		updated, err := store.UpdateStudentByID(intID, student)
		if err != nil {
			slog.Error("error updating student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/student/{id}
// Permanently removes a student record. Admins only.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		identity := middleware.Identity(r.Context())
		role, err := roles.Resolve(identity)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		if err := gate.Authorize(identity, role, auth.ActionDeleteStudent,
			auth.Target{StudentID: intID}); err != nil {
			response.WriteError(w, err)
			return
		}

		if err := store.DeleteStudentByID(intID); err != nil {
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteError(w, err)
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "student deleted successfully"})
	}
}
