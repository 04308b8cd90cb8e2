package booktracker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Signup registers a new account. The backend usually logs the user in as
// part of the same response.
func (c *Client) Signup(ctx context.Context, creds Credentials) error {
	if err := creds.validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/signup", creds, nil)
}

// Login exchanges credentials for a session cookie held in the client's jar.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if err := creds.validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/login", creds, nil)
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// Me returns the signed-in user, or ErrUnauthorized.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (cr Credentials) validate() error {
	if strings.TrimSpace(cr.Username) == "" {
		return fmt.Errorf("username is required: %w", ErrInvalidInput)
	}
	if cr.Password == "" {
		return fmt.Errorf("password is required: %w", ErrInvalidInput)
	}
	return nil
}
