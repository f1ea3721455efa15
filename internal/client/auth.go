package client

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, email, phone, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/users/register", map[string]string{
		"email":    email,
		"phone":    phone,
		"password": password,
	}, nil)
}

// Login signs in and stores the token in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
		ID    uint   `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp); err != nil {
		return err
	}

	c.session.Token = resp.Token
	c.session.UserID = resp.ID
	return c.session.Save()
}

// Logout drops the session locally and tells the server.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/users/logout", nil, nil)
	if clearErr := c.session.Clear(); clearErr != nil {
		return clearErr
	}
	return err
}

// ForgotPassword asks the server to mail a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/users/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword sets a new password with the token from the reset link.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/users/reset-password/"+url.PathEscape(token), map[string]string{"password": password}, nil)
}
