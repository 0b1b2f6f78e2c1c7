package api

import (
	"context"
	"net/http"
)

// RegisterInfo carries the registration form fields.
type RegisterInfo struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	SecurityPhrase string `json:"securityPhrase"`
}

// Login authenticates with email and password. On success the backend sets
// the session cookie, which is persisted for later runs.
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/login", payload, nil); err != nil {
		return err
	}
	if err := c.SaveCookies(); err != nil {
		c.log.Warn().Err(err).Msg("persist session cookies")
	}
	return nil
}

// Register creates a new account and, like login, leaves a session behind.
func (c *Client) Register(ctx context.Context, info RegisterInfo) error {
	if err := c.doJSON(ctx, http.MethodPost, "/register", info, nil); err != nil {
		return err
	}
	if err := c.SaveCookies(); err != nil {
		c.log.Warn().Err(err).Msg("persist session cookies")
	}
	return nil
}

// Authenticated probes the session with a cheap authenticated GET.
func (c *Client) Authenticated(ctx context.Context) bool {
	err := c.doJSON(ctx, http.MethodGet, "/login", nil, nil)
	return err == nil
}

// CheckUser is step one of the password-change wizard: resolve the account
// and obtain the server's phrase token for step two.
func (c *Client) CheckUser(ctx context.Context, identifier string) (string, error) {
	payload := map[string]string{"username": identifier, "email": identifier}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/check-user", payload, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// VerifyPhrase is step two: prove knowledge of the security phrase.
func (c *Client) VerifyPhrase(ctx context.Context, phrase, token string) error {
	payload := map[string]string{"phrase": phrase, "hashedPhrase": token}
	return c.doJSON(ctx, http.MethodPost, "/verify-phrase", payload, nil)
}

// UpdatePassword is step three: set the new password.
func (c *Client) UpdatePassword(ctx context.Context, identifier, newPassword string) error {
	payload := map[string]string{
		"username":    identifier,
		"email":       identifier,
		"newPassword": newPassword,
	}
	return c.doJSON(ctx, http.MethodPost, "/update-password", payload, nil)
}
