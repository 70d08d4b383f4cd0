package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/djsadd/elibrary/internal/shared"
)

// Credentials is the login/register request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair and stores it in the
// session. remember selects the durable tier.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) error {
	body, err := c.Call(ctx, http.MethodPost, "/api/auth/login", Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("%w: malformed login response", shared.ErrAPIRequest)
	}

	access := ExtractAccessToken(data)
	if access == "" {
		return fmt.Errorf("%w: no token in login response", shared.ErrAPIRequest)
	}

	return c.session.Set(access, ExtractRefreshToken(data), remember)
}

// Register creates an account and signs in when the backend returns a
// token pair directly.
func (c *Client) Register(ctx context.Context, email, password string, remember bool) error {
	body, err := c.Call(ctx, http.MethodPost, "/api/auth/register", Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}

	if access := ExtractAccessToken(data); access != "" {
		return c.session.Set(access, ExtractRefreshToken(data), remember)
	}
	return nil
}

// Logout destroys the local session. The backend keeps no server-side
// session state for bearer tokens.
func (c *Client) Logout() {
	c.session.Clear()
}
