package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
)

// newTestStore opens a fresh database file in a per-test temp dir.
func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := New(&config.Config{
		StoragePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Db.Close() })

	return s
}

func TestStudentLifecycle(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateStudent("Rakesh", "rakesh@test.com", "pass123")
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := s.GetStudentByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Rakesh", got.Name)
	assert.Equal(t, "rakesh@test.com", got.Email)
	assert.Equal(t, "pass123", got.Password)

	byEmail, err := s.GetStudentByEmail("rakesh@test.com")
	require.NoError(t, err)
	assert.Equal(t, got, byEmail)

	updated, err := s.UpdateStudentByID(id, types.Student{
		Name: "Rakesh Updated", Email: "rakesh2@test.com", Password: "newpass",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rakesh Updated", updated.Name)
	assert.Equal(t, "rakesh2@test.com", updated.Email)

	all, err := s.GetStudents()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteStudentByID(id))

	_, err = s.GetStudentByID(id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDuplicateStudentEmailConflicts(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateStudent("Rakesh", "rakesh@test.com", "pass123")
	require.NoError(t, err)

	// Same email again — the UNIQUE constraint must reject it at write
	// time and surface as the conflict sentinel.
	_, err = s.CreateStudent("Other", "rakesh@test.com", "pass456")
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestUpdateToTakenEmailConflicts(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateStudent("A", "a@test.com", "p")
	require.NoError(t, err)
	idB, err := s.CreateStudent("B", "b@test.com", "p")
	require.NoError(t, err)

	_, err = s.UpdateStudentByID(idB, types.Student{
		Name: "B", Email: "a@test.com", Password: "p",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestMissingRecordsReturnNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetStudentByID(42)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetStudentByEmail("nobody@test.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetAdminByEmail("nobody@test.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetCourseByID(42)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetCourseByName("nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetGradeByID(42)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, s.DeleteStudentByID(42), storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCourseByID(42), storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteGradeByID(42), storage.ErrNotFound)

	_, err = s.UpdateStudentByID(42, types.Student{Name: "X", Email: "x@test.com", Password: "p"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAdminLifecycle(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateAdmin("root@test.com", "hashed-password", "admin")
	require.NoError(t, err)

	admin, err := s.GetAdminByEmail("root@test.com")
	require.NoError(t, err)
	assert.Equal(t, id, admin.ID)
	assert.Equal(t, "hashed-password", admin.Password)
	assert.Equal(t, "admin", admin.TypeAcct)

	_, err = s.CreateAdmin("root@test.com", "other-hash", "admin")
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestCourseLifecycle(t *testing.T) {
	s := newTestStore(t)

	aliceID, err := s.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)
	bobID, err := s.CreateStudent("Bob", "bob@test.com", "p")
	require.NoError(t, err)

	c1, err := s.CreateCourse("BackEnd", "Ada", aliceID)
	require.NoError(t, err)
	_, err = s.CreateCourse("BackEnd", "Grace", bobID)
	require.NoError(t, err)
	_, err = s.CreateCourse("FrontEnd", "Linus", bobID)
	require.NoError(t, err)

	all, err := s.GetCourses()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// First row wins on duplicate names.
	byName, err := s.GetCourseByName("BackEnd")
	require.NoError(t, err)
	assert.Equal(t, c1, byName.ID)

	bobs, err := s.GetCoursesByStudentID(bobID)
	require.NoError(t, err)
	assert.Len(t, bobs, 2)

	roster, err := s.GetStudentsByCourseName("BackEnd")
	require.NoError(t, err)
	require.Len(t, roster, 2)

	updated, err := s.UpdateCourseByID(c1, types.Course{Name: "Cloud", Instructor: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Cloud", updated.Name)
	// Ownership never changes on update.
	assert.Equal(t, aliceID, updated.StudentID)

	require.NoError(t, s.DeleteCourseByID(c1))
	_, err = s.GetCourseByID(c1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGradeLifecycle(t *testing.T) {
	s := newTestStore(t)

	aliceID, err := s.CreateStudent("Alice", "alice@test.com", "p")
	require.NoError(t, err)

	id, err := s.CreateGrade("A", aliceID)
	require.NoError(t, err)

	grade, err := s.GetGradeByID(id)
	require.NoError(t, err)
	assert.Equal(t, "A", grade.Score)
	assert.Equal(t, aliceID, grade.StudentID)

	updated, err := s.UpdateGradeByID(id, types.Grade{Score: "B+"})
	require.NoError(t, err)
	assert.Equal(t, "B+", updated.Score)
	assert.Equal(t, aliceID, updated.StudentID)

	all, err := s.GetGrades()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteGradeByID(id))
	_, err = s.GetGradeByID(id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListsAreEmptyNotNil(t *testing.T) {
	s := newTestStore(t)

	students, err := s.GetStudents()
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)

	courses, err := s.GetCourses()
	require.NoError(t, err)
	assert.NotNil(t, courses)

	grades, err := s.GetGrades()
	require.NoError(t, err)
	assert.NotNil(t, grades)
}
