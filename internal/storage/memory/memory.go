// Package memory provides an in-process implementation of the
// storage.Storage interface backed by plain maps.
//
// It exists for tests and for running the API without a database file.
// Behaviour mirrors the sqlite backend: the same sentinel errors, the
// same uniqueness rules, and copies (never references) handed to
// callers so stored records cannot be mutated from outside.
package memory

import (
	"fmt"
	"sync"

	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
)

// Memory is the concrete in-process implementation of storage.Storage.
// A single RWMutex serialises writes, matching the single-writer
// semantics SQLite gives us for free.
type Memory struct {
	mu sync.RWMutex

	students map[int64]types.Student
	admins   map[int64]types.Admin
	courses  map[int64]types.Course
	grades   map[int64]types.Grade

	nextID int64
}

// New returns an empty store.
func New() *Memory {
	return &Memory{
		students: make(map[int64]types.Student),
		admins:   make(map[int64]types.Admin),
		courses:  make(map[int64]types.Course),
		grades:   make(map[int64]types.Grade),
	}
}

// id allocates the next primary key. Callers must hold mu.
func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// ── Students ─────────────────────────────────────────────────────────

func (m *Memory) CreateStudent(name, email, password string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, st := range m.students {
		if st.Email == email {
			return 0, fmt.Errorf("CreateStudent: %w", storage.ErrConflict)
		}
	}

	id := m.id()
	m.students[id] = types.Student{ID: id, Name: name, Email: email, Password: password}
	return id, nil
}

func (m *Memory) GetStudentByID(id int64) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	student, ok := m.students[id]
	if !ok {
		return types.Student{},
			fmt.Errorf("no student with id %d: %w", id, storage.ErrNotFound)
	}
	return student, nil
}

func (m *Memory) GetStudentByEmail(email string) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, student := range m.students {
		if student.Email == email {
			return student, nil
		}
	}
	return types.Student{},
		fmt.Errorf("no student with email %s: %w", email, storage.ErrNotFound)
}

func (m *Memory) GetStudents() ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]types.Student, 0, len(m.students))
	for _, student := range m.students {
		students = append(students, student)
	}
	return students, nil
}

func (m *Memory) UpdateStudentByID(id int64, student types.Student) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.students[id]
	if !ok {
		return types.Student{},
			fmt.Errorf("no student with id %d: %w", id, storage.ErrNotFound)
	}

	// The new email must not belong to anyone else.
	for otherID, other := range m.students {
		if otherID != id && other.Email == student.Email {
			return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", storage.ErrConflict)
		}
	}

	current.Name = student.Name
	current.Email = student.Email
	current.Password = student.Password
	m.students[id] = current
	return current, nil
}

func (m *Memory) DeleteStudentByID(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[id]; !ok {
		return fmt.Errorf("no student with id %d: %w", id, storage.ErrNotFound)
	}
	delete(m.students, id)
	return nil
}

// ── Admins ───────────────────────────────────────────────────────────

func (m *Memory) CreateAdmin(email, passwordHash, typeAcct string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, admin := range m.admins {
		if admin.Email == email {
			return 0, fmt.Errorf("CreateAdmin: %w", storage.ErrConflict)
		}
	}

	id := m.id()
	m.admins[id] = types.Admin{ID: id, Email: email, Password: passwordHash, TypeAcct: typeAcct}
	return id, nil
}

func (m *Memory) GetAdminByEmail(email string) (types.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, admin := range m.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return types.Admin{},
		fmt.Errorf("no admin with email %s: %w", email, storage.ErrNotFound)
}

// ── Courses ──────────────────────────────────────────────────────────

func (m *Memory) CreateCourse(name, instructor string, studentID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.id()
	m.courses[id] = types.Course{ID: id, Name: name, Instructor: instructor, StudentID: studentID}
	return id, nil
}

func (m *Memory) GetCourseByID(id int64) (types.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	course, ok := m.courses[id]
	if !ok {
		return types.Course{},
			fmt.Errorf("no course with id %d: %w", id, storage.ErrNotFound)
	}
	return course, nil
}

func (m *Memory) GetCourseByName(name string) (types.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Lowest id wins on duplicate names, matching the sqlite backend.
	var found types.Course
	for _, course := range m.courses {
		if course.Name != name {
			continue
		}
		if found.ID == 0 || course.ID < found.ID {
			found = course
		}
	}
	if found.ID == 0 {
		return types.Course{},
			fmt.Errorf("no course named %s: %w", name, storage.ErrNotFound)
	}
	return found, nil
}

func (m *Memory) GetCourses() ([]types.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	courses := make([]types.Course, 0, len(m.courses))
	for _, course := range m.courses {
		courses = append(courses, course)
	}
	return courses, nil
}

func (m *Memory) GetCoursesByStudentID(studentID int64) ([]types.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	courses := make([]types.Course, 0)
	for _, course := range m.courses {
		if course.StudentID == studentID {
			courses = append(courses, course)
		}
	}
	return courses, nil
}

func (m *Memory) GetStudentsByCourseName(name string) ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]types.Student, 0)
	for _, course := range m.courses {
		if course.Name != name {
			continue
		}
		if student, ok := m.students[course.StudentID]; ok {
			students = append(students, student)
		}
	}
	return students, nil
}

func (m *Memory) UpdateCourseByID(id int64, course types.Course) (types.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.courses[id]
	if !ok {
		return types.Course{},
			fmt.Errorf("no course with id %d: %w", id, storage.ErrNotFound)
	}
	current.Name = course.Name
	current.Instructor = course.Instructor
	m.courses[id] = current
	return current, nil
}

func (m *Memory) DeleteCourseByID(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.courses[id]; !ok {
		return fmt.Errorf("no course with id %d: %w", id, storage.ErrNotFound)
	}
	delete(m.courses, id)
	return nil
}

// ── Grades ───────────────────────────────────────────────────────────

func (m *Memory) CreateGrade(score string, studentID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.id()
	m.grades[id] = types.Grade{ID: id, Score: score, StudentID: studentID}
	return id, nil
}

func (m *Memory) GetGradeByID(id int64) (types.Grade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	grade, ok := m.grades[id]
	if !ok {
		return types.Grade{},
			fmt.Errorf("no grade with id %d: %w", id, storage.ErrNotFound)
	}
	return grade, nil
}

func (m *Memory) GetGrades() ([]types.Grade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	grades := make([]types.Grade, 0, len(m.grades))
	for _, grade := range m.grades {
		grades = append(grades, grade)
	}
	return grades, nil
}

func (m *Memory) UpdateGradeByID(id int64, grade types.Grade) (types.Grade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.grades[id]
	if !ok {
		return types.Grade{},
			fmt.Errorf("no grade with id %d: %w", id, storage.ErrNotFound)
	}
	current.Score = grade.Score
	m.grades[id] = current
	return current, nil
}

func (m *Memory) DeleteGradeByID(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.grades[id]; !ok {
		return fmt.Errorf("no grade with id %d: %w", id, storage.ErrNotFound)
	}
	delete(m.grades, id)
	return nil
}
