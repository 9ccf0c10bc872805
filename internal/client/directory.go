package client

import (
	"context"
	"net/http"
	"net/url"

	"tenderdesk/internal/app/dto"
)

// Login authenticates with a mail or userName identifier and remembers the
// bearer token on the client.
func (c *Client) Login(ctx context.Context, identifier, password string) (dto.AuthResponse, error) {
	req := dto.LoginRequest{Identifier: identifier, Password: password}
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return dto.AuthResponse{}, err
	}
	c.Token = out.Token
	return out, nil
}

// UsersByRoleKey lists users holding the role key, optionally filtered by a
// substring query over userName and mail.
func (c *Client) UsersByRoleKey(ctx context.Context, key, q string) ([]dto.UserSummary, error) {
	query := url.Values{"key": {key}}
	if q != "" {
		query.Set("q", q)
	}
	var out []dto.UserSummary
	if err := c.do(ctx, http.MethodGet, "/users/by_role_key", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers returns all accounts, optionally filtered by role id.
func (c *Client) ListUsers(ctx context.Context, roleID string) ([]dto.User, error) {
	query := url.Values{}
	if roleID != "" {
		query.Set("rolId", roleID)
	}
	var out []dto.User
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser registers an account.
func (c *Client) CreateUser(ctx context.Context, req dto.CreateUserRequest) (dto.User, error) {
	var out dto.User
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &out); err != nil {
		return dto.User{}, err
	}
	return out, nil
}

// ListRoles returns the role catalog.
func (c *Client) ListRoles(ctx context.Context) ([]dto.Role, error) {
	var out []dto.Role
	if err := c.do(ctx, http.MethodGet, "/roles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
