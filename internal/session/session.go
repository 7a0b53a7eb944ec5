package session

import (
	"fmt"
	"time"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/pkg/errors"
)

// Session is the explicit context every request-issuing call receives. It
// replaces the browser's token and cached-profile storage.
type Session struct {
	ID        string     `json:"id"`
	Token     string     `json:"-"`
	Profile   model.User `json:"profile"`
	ExpiresAt time.Time  `json:"expires_at"`
	role      model.Role
}

func (s *Session) Role() model.Role {
	return s.role
}

func (s *Session) UserID() int64 {
	return s.Profile.ID
}

// Allows reports whether the session role is one of kinds. No kinds means any role.
func (s *Session) Allows(kinds ...model.RoleKind) bool {
	if s == nil || s.role == nil {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, kind := range kinds {
		if s.role.Kind() == kind {
			return true
		}
	}
	return false
}

// Require returns errors.ErrForbidden when the role is not one of kinds.
func (s *Session) Require(kinds ...model.RoleKind) error {
	if s.Allows(kinds...) {
		return nil
	}
	kind := model.RoleKind("none")
	if s != nil && s.role != nil {
		kind = s.role.Kind()
	}
	return fmt.Errorf("%w: %s", errors.ErrForbidden, kind)
}

// New builds a session from a profile, deriving the role variant.
func New(id, token string, profile model.User, expiresAt time.Time) (*Session, error) {
	role, err := model.RoleFromUser(profile)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		Token:     token,
		Profile:   profile,
		ExpiresAt: expiresAt,
		role:      role,
	}, nil
}
