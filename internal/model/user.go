package model

import (
	"fmt"
	"strings"

	"school-portal-gateway/pkg/errors"
)

type RoleKind string

const (
	RoleAdmin   RoleKind = "admin"
	RoleTeacher RoleKind = "teacher"
	RoleStudent RoleKind = "student"
)

// RoleInfo is the backend's role object.
type RoleInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

func (r RoleInfo) Kind() RoleKind {
	return RoleKind(strings.ToLower(strings.TrimSpace(r.Name)))
}

// User is the account profile returned by /users/me?populate=*.
type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
	Address  string    `json:"address,omitempty"`
	Role     *RoleInfo `json:"role,omitempty"`
	Teacher  *Teacher  `json:"teacher,omitempty"`
	Student  *Student  `json:"student,omitempty"`
}

func (u User) RoleKind() RoleKind {
	if u.Role == nil {
		return ""
	}
	return u.Role.Kind()
}

type AuthResponse struct {
	JWT  string `json:"jwt"`
	User User   `json:"user"`
}

// EntityRef points at a linked teacher or student record.
type EntityRef struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"documentId,omitempty"`
}

// Role is one of AdminRole, TeacherRole or StudentRole.
type Role interface {
	Kind() RoleKind
	isRole()
}

type AdminRole struct{}

type TeacherRole struct {
	// Teacher is nil when the account has no teacher record yet.
	Teacher *EntityRef
}

type StudentRole struct {
	Student *EntityRef
}

func (AdminRole) Kind() RoleKind   { return RoleAdmin }
func (TeacherRole) Kind() RoleKind { return RoleTeacher }
func (StudentRole) Kind() RoleKind { return RoleStudent }

func (AdminRole) isRole()   {}
func (TeacherRole) isRole() {}
func (StudentRole) isRole() {}

// RoleFromUser maps a profile to its role variant.
func RoleFromUser(u User) (Role, error) {
	switch u.RoleKind() {
	case RoleAdmin:
		return AdminRole{}, nil
	case RoleTeacher:
		role := TeacherRole{}
		if u.Teacher != nil {
			role.Teacher = &EntityRef{ID: u.Teacher.ID, DocumentID: u.Teacher.DocumentID}
		}
		return role, nil
	case RoleStudent:
		role := StudentRole{}
		if u.Student != nil {
			role.Student = &EntityRef{ID: u.Student.ID, DocumentID: u.Student.DocumentID}
		}
		return role, nil
	case "":
		return nil, fmt.Errorf("%w: profile has no role", errors.ErrUnknownRole)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownRole, u.RoleKind())
	}
}
