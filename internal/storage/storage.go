// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// Handlers and the authorization gate should not know or care which
// database they are talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero handler changes.
//
//   - Writing tests = pass the in-memory backend that satisfies the
//     interface. No real database needed for unit tests.
//
// This is the Dependency Inversion Principle in practice.
package storage

import (
	"errors"

	"github.com/aanand-mishra/student-management-api/internal/types"
)

// Sentinel errors every backend must return so callers can map failures
// to HTTP statuses without knowing database details.
//
// Check them with errors.Is — backends are free to wrap them with
// context (e.g. "no student with id 7: record not found").
var (
	// ErrNotFound is returned by every Get/Update/Delete method when no
	// row matches. "Absent" is an expected outcome, not a server fault,
	// so handlers translate it to 404 rather than 500.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a save would violate a uniqueness
	// constraint (Admin.email, Student.email). Backends must detect the
	// violation atomically at write time — never with a prior existence
	// check, which would race with concurrent writers.
	ErrConflict = errors.New("duplicate value for unique field")
)

// Storage is the database contract.
// Any concrete type that implements ALL of these methods automatically
// satisfies this interface — Go does this implicitly (no "implements"
// keyword required).
type Storage interface {
	// ── Students ─────────────────────────────────────────────────────

	// CreateStudent inserts a new student record and returns the auto-
	// generated primary-key ID. Fails with ErrConflict if the email is
	// already taken.
	CreateStudent(name, email, password string) (int64, error)

	// GetStudentByID fetches a single student by their primary key.
	GetStudentByID(id int64) (types.Student, error)

	// GetStudentByEmail fetches a single student by their unique email.
	// This is how a token identity is resolved to a student record.
	GetStudentByEmail(email string) (types.Student, error)

	// GetStudents returns every student in the database.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() ([]types.Student, error)

	// UpdateStudentByID replaces the fields of an existing student.
	// Returns the updated student record or an error.
	UpdateStudentByID(id int64, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	DeleteStudentByID(id int64) error

	// ── Admins ───────────────────────────────────────────────────────

	// CreateAdmin inserts an administrator account. The password must
	// already be hashed by the caller. Fails with ErrConflict on a
	// duplicate email.
	CreateAdmin(email, passwordHash, typeAcct string) (int64, error)

	// GetAdminByEmail fetches an admin account by its unique email.
	// This is the role-lookup primitive for authorization.
	GetAdminByEmail(email string) (types.Admin, error)

	// ── Courses ──────────────────────────────────────────────────────

	CreateCourse(name, instructor string, studentID int64) (int64, error)
	GetCourseByID(id int64) (types.Course, error)

	// GetCourseByName returns the first course with the given name.
	GetCourseByName(name string) (types.Course, error)

	GetCourses() ([]types.Course, error)

	// GetCoursesByStudentID returns every course owned by a student.
	// Used both to serve "my courses" and to enforce the one-course-
	// per-student creation rule.
	GetCoursesByStudentID(studentID int64) ([]types.Course, error)

	// GetStudentsByCourseName returns the owners of every course with
	// the given name.
	GetStudentsByCourseName(name string) ([]types.Student, error)

	UpdateCourseByID(id int64, course types.Course) (types.Course, error)
	DeleteCourseByID(id int64) error

	// ── Grades ───────────────────────────────────────────────────────

	CreateGrade(score string, studentID int64) (int64, error)
	GetGradeByID(id int64) (types.Grade, error)
	GetGrades() ([]types.Grade, error)
	UpdateGradeByID(id int64, grade types.Grade) (types.Grade, error)
	DeleteGradeByID(id int64) error
}
