// Package admin contains the administrator-only endpoints: removing
// students, managing the course catalogue, querying course rosters, and
// (in grade.go) the grade book.
//
// Every handler follows the same gated shape as the student package:
//
//	identity → resolve role → gate.Authorize → storage call → response
//
// Denials come back from the gate as auth.ErrUnauthorized (403); the
// handlers themselves contain no role checks.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"
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

// authorize bundles the role-resolve + gate steps shared by every
// handler in this package. Returns nil when the caller may proceed.
func authorize(r *http.Request, roles *auth.Roles, gate *auth.Gate,
	action auth.Action, target auth.Target) error {

	identity := middleware.Identity(r.Context())
	role, err := roles.Resolve(identity)
	if err != nil {
		return err
	}
	return gate.Authorize(identity, role, action, target)
}

// pathID parses the named integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", name)
	}
	return id, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteStudent handles DELETE /api/admin/delete/{id}
// Removes a student record. 404 if the student does not exist.
// ─────────────────────────────────────────────────────────────────────────────
func DeleteStudent(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intID, err := pathID(r, "id")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("admin deleting student", slog.Int64("id", intID))

		if err := authorize(r, roles, gate, auth.ActionDeleteStudent,
			auth.Target{StudentID: intID}); err != nil {
			response.WriteError(w, err)
			return
		}

		if _, err := store.GetStudentByID(intID); err != nil {
			response.WriteError(w, err)
			return
		}
		if err := store.DeleteStudentByID(intID); err != nil {
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK,
			map[string]string{"message": "student deleted successfully"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteStudentCourse handles DELETE /api/admin/student/{id}/course
// Removes the course owned by the given student. 404 if the student
// does not exist or owns no course.
// ─────────────────────────────────────────────────────────────────────────────
func DeleteStudentCourse(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := pathID(r, "id")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("admin deleting student course", slog.Int64("student_id", studentID))

		if err := authorize(r, roles, gate, auth.ActionDeleteCourse, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		if _, err := store.GetStudentByID(studentID); err != nil {
			response.WriteError(w, err)
			return
		}

		courses, err := store.GetCoursesByStudentID(studentID)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		if len(courses) == 0 {
			response.WriteError(w,
				fmt.Errorf("student %d has no course: %w", studentID, storage.ErrNotFound))
			return
		}

		if err := store.DeleteCourseByID(courses[0].ID); err != nil {
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("course deleted for student %d", studentID),
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// StudentsPerCourse handles GET /api/admin/course/{name}/students
// Lists the students registered in every course with the given name.
// 404 when no course carries that name.
// ─────────────────────────────────────────────────────────────────────────────
func StudentsPerCourse(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		slog.Info("admin listing course roster", slog.String("course", name))

		if err := authorize(r, roles, gate, auth.ActionListStudents, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		// Existence check first so an unknown course name is a clean 404
		// rather than an empty roster.
		if _, err := store.GetCourseByName(name); err != nil {
			response.WriteError(w, err)
			return
		}

		students, err := store.GetStudentsByCourseName(name)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string][]types.Student{"students": students})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateCourse handles POST /api/auth/admin/courses
// Creates a course for the student named in the body. Admins may name
// any student; a student caller is only allowed through the gate when
// the body names themselves (and they own no course yet).
// ─────────────────────────────────────────────────────────────────────────────
func CreateCourse(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AdminCourseRequest
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

		slog.Info("admin creating course",
			slog.String("name", req.Name),
			slog.Int64("student_id", req.StudentID))

		if err := authorize(r, roles, gate, auth.ActionCreateCourse,
			auth.Target{StudentID: req.StudentID}); err != nil {
			response.WriteError(w, err)
			return
		}

		// The owner must exist before a course can point at them.
		if _, err := store.GetStudentByID(req.StudentID); err != nil {
			response.WriteError(w, err)
			return
		}

		lastID, err := store.CreateCourse(req.Name, req.Instructor, req.StudentID)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		created, err := store.GetCourseByID(lastID)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateCourse handles PUT /api/auth/admin/courses/{id}
// Replaces a course's name and instructor. Admins only.
// ─────────────────────────────────────────────────────────────────────────────
func UpdateCourse(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intID, err := pathID(r, "id")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := authorize(r, roles, gate, auth.ActionUpdateCourse, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		var req types.UpdateCourseRequest
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

		updated, err := store.UpdateCourseByID(intID, types.Course{
			Name:       req.Name,
			Instructor: req.Instructor,
		})
		if err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("course updated", slog.Int64("id", intID))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteCourse handles DELETE /api/auth/admin/courses/{id}
// Removes a course from the catalogue. Admins only.
// ─────────────────────────────────────────────────────────────────────────────
func DeleteCourse(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intID, err := pathID(r, "id")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := authorize(r, roles, gate, auth.ActionDeleteCourse, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		if err := store.DeleteCourseByID(intID); err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("course deleted", slog.Int64("id", intID))
		response.WriteJSON(w, http.StatusOK, map[string]string{"message": "course deleted"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ListCourses handles GET /api/auth/admin/courses
// Same catalogue view as the student-facing endpoint; kept because the
// original API exposed it under both prefixes.
// ─────────────────────────────────────────────────────────────────────────────
func ListCourses(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := authorize(r, roles, gate, auth.ActionListCourses, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		courses, err := store.GetCourses()
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, courses)
	}
}
