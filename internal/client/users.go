package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/adanyl0v/sprintsync/internal/models"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	FullName string `json:"full_name" validate:"required,min=1,max=100"`
	IsAdmin  bool   `json:"is_admin"`
}

func (c *Client) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := c.doJSON(ctx, http.MethodGet, "/users", nil, nil, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user := new(models.User)
	err := c.doJSON(ctx, http.MethodPost, "/users", nil, req, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return nil, &ValidationError{Message: "nothing to update"}
	}

	user := new(models.User)
	err := c.doJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(id), nil, patch, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}
