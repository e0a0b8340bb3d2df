// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, auth, storage, and utils can all import types without
// depending on each other.
package types

// Student represents a student record in our system.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON
//     (lowercase names match REST API conventions).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty.
//
// The password is stored and echoed back exactly as submitted at signup.
type Student struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Admin represents an administrator account. The password field holds a
// bcrypt hash, never the plaintext, and is excluded from JSON output.
type Admin struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"`
	TypeAcct string `json:"type_acct"`
}

// Course is owned by exactly one student via StudentID.
type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
	StudentID  int64  `json:"student_id"`
}

// Grade records a score for a student. Scores are free-form strings
// ("A", "87.5", "pass") rather than numbers.
type Grade struct {
	ID        int64  `json:"id"`
	Score     string `json:"score"`
	StudentID int64  `json:"student_id"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Request payloads.
//
// Incoming JSON bodies are decoded into these before validation, so the
// entity structs above never carry half-validated client input.
// ─────────────────────────────────────────────────────────────────────────────

// AdminSignupRequest is the body of POST /api/auth/admin/signup.
type AdminSignupRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required"`
	TypeAcct string `json:"type_acct" validate:"required"`
}

// LoginRequest is the body of POST /api/auth/admin/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is returned on a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Type         string `json:"type"`
}

// CreateCourseRequest is the body of POST /api/course/create_course.
// The owner is taken from the caller's token, never from the body.
type CreateCourseRequest struct {
	Name       string `json:"name"       validate:"required"`
	Instructor string `json:"instructor" validate:"required"`
}

// AdminCourseRequest is the body of the admin course-create endpoint,
// where the owning student is named explicitly.
type AdminCourseRequest struct {
	Name       string `json:"name"       validate:"required"`
	Instructor string `json:"instructor" validate:"required"`
	StudentID  int64  `json:"student_id" validate:"required"`
}

// UpdateCourseRequest is the body of PUT /api/auth/admin/courses/{id}.
type UpdateCourseRequest struct {
	Name       string `json:"name"       validate:"required"`
	Instructor string `json:"instructor" validate:"required"`
}

// GradeRequest is the body of the grade create/update endpoints.
type GradeRequest struct {
	Score string `json:"score" validate:"required"`
}
