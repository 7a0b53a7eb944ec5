package backend

import (
	"context"
	"fmt"
	"net/http"

	"school-portal-gateway/internal/model"
	"school-portal-gateway/pkg/errors"
)

// Login exchanges an identifier (email or username) and password for a JWT.
func (c *Client) Login(ctx context.Context, identifier, password string) (*model.AuthResponse, error) {
	authData := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	var authResp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/local", nil, "", authData, &authResp)
	if err != nil {
		// The CMS answers bad credentials with 400.
		if apiErr, ok := err.(*errors.APIError); ok && apiErr.Status == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", errors.ErrUnauthorized, apiErr.Message)
		}
		return nil, err
	}

	if authResp.JWT == "" {
		return nil, fmt.Errorf("%w: empty token in login response", errors.ErrUnauthorized)
	}

	c.log.Debug().Int64("user_id", authResp.User.ID).Msg("Login succeeded")
	return &authResp, nil
}

// Me fetches the caller's profile with role and linked records populated.
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	query := NewQuery().Populate("*")
	if err := c.do(ctx, http.MethodGet, "/users/me", query, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
