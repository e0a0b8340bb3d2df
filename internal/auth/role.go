package auth

import (
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-management-api/internal/storage"
)

// Role is the closed set of privilege levels an identity can hold.
// An identity's role is derived purely from which stores contain its
// email — there is no separate role table to drift out of sync.
type Role int

const (
	// RoleNone: a valid token whose subject matches no record. Such a
	// caller is authenticated but can do nothing.
	RoleNone Role = iota

	// RoleStudent: the email matches a student record only.
	RoleStudent

	// RoleAdmin: the email matches an admin record only.
	RoleAdmin

	// RoleBoth: the email appears in both stores. Admin privileges
	// apply wherever the two roles differ.
	RoleBoth
)

// IsAdmin reports whether admin privileges apply.
func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleBoth }

// IsStudent reports whether the identity has a student record.
func (r Role) IsStudent() bool { return r == RoleStudent || r == RoleBoth }

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleAdmin:
		return "admin"
	case RoleBoth:
		return "admin+student"
	default:
		return "none"
	}
}

// Roles resolves identities to roles against the store.
//
// Each Resolve call re-queries the store; results are deliberately not
// cached so a just-deleted account loses access on its next request.
type Roles struct {
	store storage.Storage
}

// NewRoles returns a role resolver backed by the given store.
func NewRoles(store storage.Storage) *Roles {
	return &Roles{store: store}
}

// Resolve looks the identity up as an admin email and as a student
// email and combines the results. Store failures other than "not
// found" propagate — a broken store must fail the request, not
// silently demote the caller.
func (l *Roles) Resolve(identity string) (Role, error) {
	isAdmin, err := l.isAdmin(identity)
	if err != nil {
		return RoleNone, err
	}
	isStudent, err := l.isStudent(identity)
	if err != nil {
		return RoleNone, err
	}

	switch {
	case isAdmin && isStudent:
		return RoleBoth, nil
	case isAdmin:
		return RoleAdmin, nil
	case isStudent:
		return RoleStudent, nil
	default:
		return RoleNone, nil
	}
}

func (l *Roles) isAdmin(identity string) (bool, error) {
	_, err := l.store.GetAdminByEmail(identity)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolve role: %w", err)
	}
	return true, nil
}

func (l *Roles) isStudent(identity string) (bool, error) {
	_, err := l.store.GetStudentByEmail(identity)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolve role: %w", err)
	}
	return true, nil
}
