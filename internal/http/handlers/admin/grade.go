package admin

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-management-api/internal/auth"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
	"github.com/aanand-mishra/student-management-api/internal/utils/response"
)

// decodeGrade reads and validates a GradeRequest body.
func decodeGrade(r *http.Request) (types.GradeRequest, error) {
	var req types.GradeRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if errors.Is(err, io.EOF) {
		return req, errors.New("request body is empty")
	}
	if err != nil {
		return req, err
	}
	return req, validator.New().Struct(req)
}

// ─────────────────────────────────────────────────────────────────────────────
// AddGrade handles POST /api/auth/admin/course/add_grade/{course_id}/{student_id}
// Records a grade for a student in a course. Admins only. Both the
// course and the student must exist (404 otherwise).
//
// Request body (JSON):
//
//	{ "score": "A" }
//
// ─────────────────────────────────────────────────────────────────────────────
func AddGrade(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := pathID(r, "course_id")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		studentID, err := pathID(r, "student_id")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		slog.Info("admin adding grade",
			slog.Int64("course_id", courseID),
			slog.Int64("student_id", studentID))

		if err := authorize(r, roles, gate, auth.ActionCreateGrade,
			auth.Target{StudentID: studentID}); err != nil {
			response.WriteError(w, err)
			return
		}

		if _, err := store.GetCourseByID(courseID); err != nil {
			response.WriteError(w, err)
			return
		}
		if _, err := store.GetStudentByID(studentID); err != nil {
			response.WriteError(w, err)
			return
		}

		req, err := decodeGrade(r)
		if err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		lastID, err := store.CreateGrade(req.Score, studentID)
		if err != nil {
			response.WriteError(w, err)
			return
		}

		created, err := store.GetGradeByID(lastID)
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// EditGrade handles PUT /api/auth/admin/course/edit_grade/{id}
// Replaces the score of an existing grade. Admins only.
// ─────────────────────────────────────────────────────────────────────────────
func EditGrade(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intID, err := pathID(r, "id")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := authorize(r, roles, gate, auth.ActionUpdateGrade, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		req, err := decodeGrade(r)
		if err != nil {
			var validateErrs validator.ValidationErrors
			if errors.As(err, &validateErrs) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(validateErrs))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		updated, err := store.UpdateGradeByID(intID, types.Grade{Score: req.Score})
		if err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("grade updated", slog.Int64("id", intID))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteGrade handles DELETE /api/auth/admin/course/delete_grade/{id}
// Removes a grade. Admins only.
// ─────────────────────────────────────────────────────────────────────────────
func DeleteGrade(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intID, err := pathID(r, "id")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := authorize(r, roles, gate, auth.ActionDeleteGrade, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		if err := store.DeleteGradeByID(intID); err != nil {
			response.WriteError(w, err)
			return
		}

		slog.Info("grade deleted", slog.Int64("id", intID))
		response.WriteJSON(w, http.StatusOK, map[string]string{"message": "grade deleted"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ListGrades handles GET /api/auth/admin/grades
// Returns the whole grade book. Admins only.
// ─────────────────────────────────────────────────────────────────────────────
func ListGrades(store storage.Storage, roles *auth.Roles, gate *auth.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := authorize(r, roles, gate, auth.ActionListGrades, auth.Target{}); err != nil {
			response.WriteError(w, err)
			return
		}

		grades, err := store.GetGrades()
		if err != nil {
			response.WriteError(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, grades)
	}
}
