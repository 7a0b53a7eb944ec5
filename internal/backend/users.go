package backend

import (
	"context"
	"net/http"

	"school-portal-gateway/internal/model"
)

// The users-permissions endpoints do not use the {data: ...} envelope.

func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	users := []model.User{}
	query := NewQuery().Populate("role")
	if err := c.do(ctx, http.MethodGet, "/users", query, token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, in model.UserInput) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/users", nil, token, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListRoles(ctx context.Context, token string) ([]model.RoleInfo, error) {
	var resp struct {
		Roles []model.RoleInfo `json:"roles"`
	}
	if err := c.do(ctx, http.MethodGet, "/users-permissions/roles", nil, token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Roles == nil {
		return []model.RoleInfo{}, nil
	}
	return resp.Roles, nil
}
