package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"school-portal-gateway/internal/config"
	"school-portal-gateway/internal/logger"
	"school-portal-gateway/internal/model"
	"school-portal-gateway/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*model.AuthResponse, error)
	Me(ctx context.Context, token string) (*model.User, error)
}

type tokenEntry struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager owns the session lifecycle: Login creates one, Logout invalidates it.
// The token entry lives only as long as the JWT; the profile entry outlives it
// and is removed on logout.
type Manager struct {
	auth       Authenticator
	store      Store
	prefix     string
	ttl        time.Duration
	profileTTL time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

func NewManager(cfg *config.Config, auth Authenticator, store Store) *Manager {
	return &Manager{
		auth:       auth,
		store:      store,
		prefix:     cfg.Redis.SessionPrefix,
		ttl:        cfg.Session.TTL,
		profileTTL: cfg.Session.ProfileTTL,
		now:        time.Now,
		log:        logger.Component("session"),
	}
}

func (m *Manager) tokenKey(id string) string   { return m.prefix + id + ":token" }
func (m *Manager) profileKey(id string) string { return m.prefix + id + ":profile" }

func (m *Manager) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.Required("identifier")
	}
	if password == "" {
		return nil, errors.Required("password")
	}

	authResp, err := m.auth.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	profile, err := m.auth.Me(ctx, authResp.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	role, err := model.RoleFromUser(*profile)
	if err != nil {
		return nil, err
	}

	now := m.now()
	ttl := tokenTTL(authResp.JWT, m.ttl, now)
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: token already expired", errors.ErrUnauthorized)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Token:     authResp.JWT,
		Profile:   *profile,
		ExpiresAt: now.Add(ttl),
		role:      role,
	}

	if err := m.save(ctx, sess, ttl); err != nil {
		return nil, err
	}

	m.log.Info().
		Str("session_id", sess.ID).
		Int64("user_id", profile.ID).
		Str("role", string(role.Kind())).
		Time("expires_at", sess.ExpiresAt).
		Msg("Session created")

	return sess, nil
}

func (m *Manager) save(ctx context.Context, sess *Session, ttl time.Duration) error {
	tokenData, err := json.Marshal(tokenEntry{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	profileData, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := m.store.Set(ctx, m.tokenKey(sess.ID), tokenData, ttl); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	profileTTL := m.profileTTL
	if profileTTL < ttl {
		profileTTL = ttl
	}
	if err := m.store.Set(ctx, m.profileKey(sess.ID), profileData, profileTTL); err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// Get loads a session. Both the token and the cached profile must be present.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, errors.ErrSessionNotFound
	}

	tokenData, err := m.store.Get(ctx, m.tokenKey(id))
	if err != nil {
		return nil, err
	}
	profileData, err := m.store.Get(ctx, m.profileKey(id))
	if err != nil {
		return nil, err
	}

	var entry tokenEntry
	if err := json.Unmarshal(tokenData, &entry); err != nil {
		return nil, fmt.Errorf("corrupt session token: %w", err)
	}
	var profile model.User
	if err := json.Unmarshal(profileData, &profile); err != nil {
		return nil, fmt.Errorf("corrupt session profile: %w", err)
	}

	return New(id, entry.Token, profile, entry.ExpiresAt)
}

func (m *Manager) Logout(ctx context.Context, id string) error {
	if id == "" {
		return errors.ErrSessionNotFound
	}
	if err := m.store.Del(ctx, m.tokenKey(id), m.profileKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.log.Info().Str("session_id", id).Msg("Session invalidated")
	return nil
}
