package auth

import (
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-management-api/internal/storage"
)

// Action is the closed set of gated operations. Every handler names its
// action explicitly; there is no string-keyed permission lookup that a
// typo could silently widen.
type Action int

const (
	ActionListStudents Action = iota
	ActionGetStudent
	ActionUpdateStudent
	ActionDeleteStudent
	ActionListCourses
	ActionListOwnCourses
	ActionCreateCourse
	ActionUpdateCourse
	ActionDeleteCourse
	ActionListGrades
	ActionCreateGrade
	ActionUpdateGrade
	ActionDeleteGrade
)

func (a Action) String() string {
	switch a {
	case ActionListStudents:
		return "list students"
	case ActionGetStudent:
		return "view student"
	case ActionUpdateStudent:
		return "update student"
	case ActionDeleteStudent:
		return "delete student"
	case ActionListCourses:
		return "list courses"
	case ActionListOwnCourses:
		return "list own courses"
	case ActionCreateCourse:
		return "create course"
	case ActionUpdateCourse:
		return "update course"
	case ActionDeleteCourse:
		return "delete course"
	case ActionListGrades:
		return "list grades"
	case ActionCreateGrade:
		return "create grade"
	case ActionUpdateGrade:
		return "update grade"
	case ActionDeleteGrade:
		return "delete grade"
	default:
		return "unknown action"
	}
}

// Target identifies the record an action operates on, for ownership
// checks. Either field may be set; both zero means the action has no
// per-record target (e.g. listing).
type Target struct {
	StudentID int64
	Email     string
}

// capability says who may perform an action. Admin permission is listed
// explicitly even though every current action grants it — the table is
// the single source of truth, not an implicit "admin can do anything".
type capability struct {
	admin       bool // admins may perform this action on any record
	studentSelf bool // students may perform this action on their own record
	studentAny  bool // any student may perform this action, regardless of target
}

// capabilities is the static policy table. One row per action:
//
//	action           admin  student(self)  student(other)
//	list students    allow  deny           deny
//	get student      allow  allow          deny
//	update student   allow  deny           deny
//	delete student   allow  deny           deny
//	list courses     allow  allow          allow (read-only)
//	list own courses allow  allow          deny
//	create course    allow  allow, once    deny
//	update course    allow  deny           deny
//	delete course    allow  deny           deny
//	grades (all)     allow  deny           deny
//
// Unauthenticated callers never reach this table — the middleware
// rejects them first.
var capabilities = map[Action]capability{
	ActionListStudents:   {admin: true},
	ActionGetStudent:     {admin: true, studentSelf: true},
	ActionUpdateStudent:  {admin: true},
	ActionDeleteStudent:  {admin: true},
	ActionListCourses:    {admin: true, studentAny: true},
	ActionListOwnCourses: {admin: true, studentSelf: true},
	ActionCreateCourse:   {admin: true, studentSelf: true},
	ActionUpdateCourse:   {admin: true},
	ActionDeleteCourse:   {admin: true},
	ActionListGrades:     {admin: true},
	ActionCreateGrade:    {admin: true},
	ActionUpdateGrade:    {admin: true},
	ActionDeleteGrade:    {admin: true},
}

// Gate is the authorization decision point. It holds the store only to
// resolve a target's owner when an ownership check needs it; it never
// writes anything.
type Gate struct {
	store storage.Storage
}

// NewGate returns a gate backed by the given store.
func NewGate(store storage.Storage) *Gate {
	return &Gate{store: store}
}

// Authorize decides whether identity (holding role) may perform action
// on target. It returns nil to allow, or an error wrapping
// ErrUnauthorized to deny. The decision fails closed: unknown actions,
// missing targets, and unresolvable owners all deny.
//
// When the role is RoleBoth the admin column applies first, so admin
// permissions win wherever the two roles differ.
func (g *Gate) Authorize(identity string, role Role, action Action, target Target) error {
	c, ok := capabilities[action]
	if !ok {
		return fmt.Errorf("%s: %w", action, ErrUnauthorized)
	}

	if role.IsAdmin() && c.admin {
		return nil
	}

	if !role.IsStudent() {
		return fmt.Errorf("%s: %w", action, ErrUnauthorized)
	}

	if c.studentAny {
		return nil
	}

	if c.studentSelf && g.isSelf(identity, target) {
		// Students may create a course only for themselves, and only
		// while they own none.
		if action == ActionCreateCourse {
			return g.checkCourseQuota(identity)
		}
		return nil
	}

	return fmt.Errorf("%s: %w", action, ErrUnauthorized)
}

// isSelf reports whether the target record belongs to the identity.
// Any lookup failure counts as "not self".
func (g *Gate) isSelf(identity string, target Target) bool {
	if target.Email != "" {
		return target.Email == identity
	}
	if target.StudentID != 0 {
		student, err := g.store.GetStudentByID(target.StudentID)
		if err != nil {
			return false
		}
		return student.Email == identity
	}
	return false
}

// checkCourseQuota enforces the one-course-per-student creation rule.
func (g *Gate) checkCourseQuota(identity string) error {
	student, err := g.store.GetStudentByEmail(identity)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", ActionCreateCourse, ErrUnauthorized)
		}
		return fmt.Errorf("create course: %w", err)
	}

	courses, err := g.store.GetCoursesByStudentID(student.ID)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	if len(courses) > 0 {
		return fmt.Errorf("you are not allowed to create a course again: %w", ErrUnauthorized)
	}
	return nil
}
