package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/adanyl0v/sprintsync/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	FullName string `json:"full_name" validate:"required,min=1,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user := new(models.User)
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, req, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login exchanges credentials for a token and stores both the token and the
// user in the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var resp tokenResponse
	err := c.doForm(ctx, "/auth/login", url.Values{
		"username": {req.Email},
		"password": {req.Password},
	}, &resp)
	if err != nil {
		return nil, err
	}

	err = c.session.set(resp.AccessToken, resp.User)
	if err != nil {
		return nil, err
	}
	c.logger.Info().
		Str("email", req.Email).
		Msg("logged in")
	return resp.User, nil
}

func (c *Client) Logout() error {
	return c.session.Teardown()
}

func (c *Client) Refresh(ctx context.Context) error {
	var resp tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil, nil, &resp)
	if err != nil {
		return err
	}
	return c.session.setToken(resp.AccessToken)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	user := new(models.User)
	err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) UpdateMe(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return nil, &ValidationError{Message: "nothing to update"}
	}
	patch.IsAdmin = models.Field[bool]{}

	user := new(models.User)
	err := c.doJSON(ctx, http.MethodPut, "/auth/me", nil, patch, user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	health := new(Health)
	err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, health)
	if err != nil {
		return nil, err
	}
	return health, nil
}
