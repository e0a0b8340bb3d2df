// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It is fast enough for most projects and trivial to set up.
//
// Uniqueness (admins.email, students.email) is enforced by UNIQUE
// constraints in the schema, so a duplicate surfaces atomically at
// write time as a constraint error — there is no check-then-act race.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"

	// The driver registers itself as "sqlite3" with database/sql in its
	// init(). We also reference the package directly to inspect
	// constraint-violation error codes.
	sqlite3 "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at the path specified in cfg.StoragePath,
// creates the four tables if they do not already exist, and returns a
// ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	// The first actual connection happens on the first query.
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every
	// startup. If the table already exists nothing happens.
	schema := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			name     TEXT NOT NULL,
			email    TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			email     TEXT NOT NULL UNIQUE,
			password  TEXT NOT NULL,
			type_acct TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS courses (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			instructor TEXT NOT NULL,
			student_id INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS grades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			score      TEXT NOT NULL,
			student_id INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("sqlite.New: create table: %w", err)
		}
	}

	return &SQLite{Db: db}, nil
}

// translateErr maps driver-level errors onto the storage sentinels so
// callers never need to import the sqlite3 package.
func translateErr(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return storage.ErrConflict
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

// CreateStudent inserts a new row into the students table.
//
// Prepared statements use placeholders (?). The driver sends the query
// and the values separately, so values are treated as pure data, never
// as SQL syntax — user input cannot inject SQL.
func (s *SQLite) CreateStudent(name, email, password string) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO students (name, email, password) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(name, email, password)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: exec: %w", translateErr(err))
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	return lastID, nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
//
// QueryRow returns a single-row result; the "no rows" condition only
// surfaces when Scan is called, as sql.ErrNoRows.
func (s *SQLite) GetStudentByID(id int64) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, email, password FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	var student types.Student
	err = stmt.QueryRow(id).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Password,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Student{},
				fmt.Errorf("no student with id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudentByEmail fetches exactly one student row matched by the
// unique email column.
func (s *SQLite) GetStudentByEmail(email string) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, email, password FROM students WHERE email = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByEmail: prepare: %w", err)
	}
	defer stmt.Close()

	var student types.Student
	err = stmt.QueryRow(email).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Password,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Student{},
				fmt.Errorf("no student with email %s: %w", email, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByEmail: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all student rows as a slice.
func (s *SQLite) GetStudents() ([]types.Student, error) {
	// Explicitly list columns — never use SELECT * in production code.
	// If a column is added later, SELECT * would break Scan's ordering.
	rows, err := s.Db.Query("SELECT id, name, email, password FROM students")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice.
	// Returning [] instead of null in JSON is better API behaviour.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Password,
		); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces a student's data with the provided values.
// Returns the updated student so the caller can echo it back to the client.
func (s *SQLite) UpdateStudentByID(id int64, student types.Student) (types.Student, error) {
	stmt, err := s.Db.Prepare(
		"UPDATE students SET name = ?, email = ?, password = ? WHERE id = ?",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(student.Name, student.Email, student.Password, id)
	if err != nil {
		// Changing the email can collide with another student's.
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", translateErr(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Student{},
			fmt.Errorf("no student with id %d: %w", id, storage.ErrNotFound)
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return s.GetStudentByID(id)
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no student with id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Admins
// ─────────────────────────────────────────────────────────────────────────────

// CreateAdmin inserts an administrator row. The password is stored as
// given — hashing is the caller's responsibility.
func (s *SQLite) CreateAdmin(email, passwordHash, typeAcct string) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO admins (email, password, type_acct) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateAdmin: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(email, passwordHash, typeAcct)
	if err != nil {
		return 0, fmt.Errorf("CreateAdmin: exec: %w", translateErr(err))
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateAdmin: last insert id: %w", err)
	}

	return lastID, nil
}

// GetAdminByEmail fetches an admin account by the unique email column.
// Every authorization check funnels through here, so it must stay cheap.
func (s *SQLite) GetAdminByEmail(email string) (types.Admin, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, email, password, type_acct FROM admins WHERE email = ? LIMIT 1",
	)
	if err != nil {
		return types.Admin{}, fmt.Errorf("GetAdminByEmail: prepare: %w", err)
	}
	defer stmt.Close()

	var admin types.Admin
	err = stmt.QueryRow(email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.Password,
		&admin.TypeAcct,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Admin{},
				fmt.Errorf("no admin with email %s: %w", email, storage.ErrNotFound)
		}
		return types.Admin{}, fmt.Errorf("GetAdminByEmail: scan: %w", err)
	}

	return admin, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

// CreateCourse inserts a course row owned by the given student.
func (s *SQLite) CreateCourse(name, instructor string, studentID int64) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO courses (name, instructor, student_id) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(name, instructor, studentID)
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: last insert id: %w", err)
	}

	return lastID, nil
}

// GetCourseByID fetches one course row by primary key.
func (s *SQLite) GetCourseByID(id int64) (types.Course, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, instructor, student_id FROM courses WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Course{}, fmt.Errorf("GetCourseByID: prepare: %w", err)
	}
	defer stmt.Close()

	var course types.Course
	err = stmt.QueryRow(id).Scan(
		&course.ID,
		&course.Name,
		&course.Instructor,
		&course.StudentID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Course{},
				fmt.Errorf("no course with id %d: %w", id, storage.ErrNotFound)
		}
		return types.Course{}, fmt.Errorf("GetCourseByID: scan: %w", err)
	}

	return course, nil
}

// GetCourseByName returns the first course carrying the given name.
// Course names are not unique; rowid order decides ties.
func (s *SQLite) GetCourseByName(name string) (types.Course, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, instructor, student_id FROM courses WHERE name = ? LIMIT 1",
	)
	if err != nil {
		return types.Course{}, fmt.Errorf("GetCourseByName: prepare: %w", err)
	}
	defer stmt.Close()

	var course types.Course
	err = stmt.QueryRow(name).Scan(
		&course.ID,
		&course.Name,
		&course.Instructor,
		&course.StudentID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Course{},
				fmt.Errorf("no course named %s: %w", name, storage.ErrNotFound)
		}
		return types.Course{}, fmt.Errorf("GetCourseByName: scan: %w", err)
	}

	return course, nil
}

// GetCourses returns all course rows.
func (s *SQLite) GetCourses() ([]types.Course, error) {
	rows, err := s.Db.Query("SELECT id, name, instructor, student_id FROM courses")
	if err != nil {
		return nil, fmt.Errorf("GetCourses: query: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		var course types.Course
		if err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.Instructor,
			&course.StudentID,
		); err != nil {
			return nil, fmt.Errorf("GetCourses: scan row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetCourses: rows iteration: %w", err)
	}

	return courses, nil
}

// GetCoursesByStudentID returns every course owned by the student.
func (s *SQLite) GetCoursesByStudentID(studentID int64) ([]types.Course, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, name, instructor, student_id FROM courses WHERE student_id = ?",
	)
	if err != nil {
		return nil, fmt.Errorf("GetCoursesByStudentID: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(studentID)
	if err != nil {
		return nil, fmt.Errorf("GetCoursesByStudentID: query: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		var course types.Course
		if err := rows.Scan(
			&course.ID,
			&course.Name,
			&course.Instructor,
			&course.StudentID,
		); err != nil {
			return nil, fmt.Errorf("GetCoursesByStudentID: scan row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetCoursesByStudentID: rows iteration: %w", err)
	}

	return courses, nil
}

// GetStudentsByCourseName returns the owners of every course with the
// given name, via a join on the owner column.
func (s *SQLite) GetStudentsByCourseName(name string) ([]types.Student, error) {
	stmt, err := s.Db.Prepare(`
		SELECT st.id, st.name, st.email, st.password
		FROM students st
		JOIN courses c ON c.student_id = st.id
		WHERE c.name = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("GetStudentsByCourseName: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(name)
	if err != nil {
		return nil, fmt.Errorf("GetStudentsByCourseName: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Password,
		); err != nil {
			return nil, fmt.Errorf("GetStudentsByCourseName: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudentsByCourseName: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateCourseByID replaces a course's name and instructor. The owner
// column is left untouched — ownership never changes after creation.
func (s *SQLite) UpdateCourseByID(id int64, course types.Course) (types.Course, error) {
	stmt, err := s.Db.Prepare(
		"UPDATE courses SET name = ?, instructor = ? WHERE id = ?",
	)
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourseByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(course.Name, course.Instructor, id)
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourseByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourseByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Course{},
			fmt.Errorf("no course with id %d: %w", id, storage.ErrNotFound)
	}

	return s.GetCourseByID(id)
}

// DeleteCourseByID removes a course row by primary key.
func (s *SQLite) DeleteCourseByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM courses WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteCourseByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteCourseByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteCourseByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no course with id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Grades
// ─────────────────────────────────────────────────────────────────────────────

// CreateGrade inserts a grade row for the given student.
func (s *SQLite) CreateGrade(score string, studentID int64) (int64, error) {
	stmt, err := s.Db.Prepare(
		"INSERT INTO grades (score, student_id) VALUES (?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateGrade: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(score, studentID)
	if err != nil {
		return 0, fmt.Errorf("CreateGrade: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateGrade: last insert id: %w", err)
	}

	return lastID, nil
}

// GetGradeByID fetches one grade row by primary key.
func (s *SQLite) GetGradeByID(id int64) (types.Grade, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, score, student_id FROM grades WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Grade{}, fmt.Errorf("GetGradeByID: prepare: %w", err)
	}
	defer stmt.Close()

	var grade types.Grade
	err = stmt.QueryRow(id).Scan(&grade.ID, &grade.Score, &grade.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Grade{},
				fmt.Errorf("no grade with id %d: %w", id, storage.ErrNotFound)
		}
		return types.Grade{}, fmt.Errorf("GetGradeByID: scan: %w", err)
	}

	return grade, nil
}

// GetGrades returns all grade rows.
func (s *SQLite) GetGrades() ([]types.Grade, error) {
	rows, err := s.Db.Query("SELECT id, score, student_id FROM grades")
	if err != nil {
		return nil, fmt.Errorf("GetGrades: query: %w", err)
	}
	defer rows.Close()

	grades := make([]types.Grade, 0)
	for rows.Next() {
		var grade types.Grade
		if err := rows.Scan(&grade.ID, &grade.Score, &grade.StudentID); err != nil {
			return nil, fmt.Errorf("GetGrades: scan row: %w", err)
		}
		grades = append(grades, grade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetGrades: rows iteration: %w", err)
	}

	return grades, nil
}

// UpdateGradeByID replaces a grade's score. The student reference is
// immutable once recorded.
func (s *SQLite) UpdateGradeByID(id int64, grade types.Grade) (types.Grade, error) {
	stmt, err := s.Db.Prepare("UPDATE grades SET score = ? WHERE id = ?")
	if err != nil {
		return types.Grade{}, fmt.Errorf("UpdateGradeByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(grade.Score, id)
	if err != nil {
		return types.Grade{}, fmt.Errorf("UpdateGradeByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.Grade{}, fmt.Errorf("UpdateGradeByID: rows affected: %w", err)
	}
	if affected == 0 {
		return types.Grade{},
			fmt.Errorf("no grade with id %d: %w", id, storage.ErrNotFound)
	}

	return s.GetGradeByID(id)
}

// DeleteGradeByID removes a grade row by primary key.
func (s *SQLite) DeleteGradeByID(id int64) error {
	stmt, err := s.Db.Prepare("DELETE FROM grades WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteGradeByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(id)
	if err != nil {
		return fmt.Errorf("DeleteGradeByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteGradeByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no grade with id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}
