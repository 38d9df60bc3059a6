package backend

import (
	"context"
	"fmt"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for session cookies. It is not gated: a 401
// here means wrong credentials, not an expired session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	resp, err := c.Request(ctx).
		SetBody(credentials{Email: email, Password: password}).
		Post(PathLogin)
	if err := Check(resp, err); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Verify confirms the current session.
func (c *Client) Verify(ctx context.Context) error {
	resp, err := c.Request(ctx).Get(PathVerify)
	if err := Check(resp, err); err != nil {
		return fmt.Errorf("verify session: %w", err)
	}
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Request(ctx).Post(PathLogout)
	if err := Check(resp, err); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Refresh renews the session cookies. The gate calls it; nothing else should.
func (c *Client) Refresh(ctx context.Context) error {
	resp, err := c.refresh.R().SetContext(ctx).Post(PathRefresh)
	if err := Check(resp, err); err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	return nil
}
