// package api wraps outbound HTTP calls to the library backend: bearer
// credentials come from the session store, 401 responses trigger a
// single-flight token refresh, and the original request is retried exactly
// once with the new token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/djsadd/elibrary/internal/session"
	"github.com/djsadd/elibrary/internal/shared"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ServerError is a non-401 error response with a parsed message.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d: %s", e.Status, e.Message)
}

// Client performs authenticated JSON requests against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Store
	logger     *log.Logger
	limiter    *rate.Limiter
	refresh    singleflight.Group
}

// NewClient creates a new API client. The session store supplies bearer
// credentials and receives the cleared-on-failure side effects.
func NewClient(baseURL string, client *http.Client, sess *session.Store, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		session:    sess,
		logger:     logger,
	}
}

// BaseURL returns the backend base URL the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Logger returns the logger the client writes warnings to.
func (c *Client) Logger() *log.Logger {
	return c.logger
}

// SetLogger swaps the client's logger, used when the TUI owns the terminal.
func (c *Client) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// SetRateLimit bounds outbound request rate. Zero or negative disables the limiter.
func (c *Client) SetRateLimit(rps float64) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// isAuthPath reports whether the path belongs to the auth lifecycle and is
// therefore exempt from the bearer-token gate.
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/api/auth/")
}

// Call performs an authenticated request and returns the response body.
//
// Gated calls with no stored token fail fast with [shared.ErrUnauthorized]
// without hitting the network. A 401 starts (or joins) the single-flight
// refresh; on success the request is retried exactly once.
func (c *Client) Call(ctx context.Context, method, path string, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	gated := !isAuthPath(path)
	sess := c.session.Get()

	if gated {
		if sess.AccessToken() == "" {
			c.session.Clear()
			return nil, fmt.Errorf("%w: no access token", shared.ErrUnauthorized)
		}
		// An expired token with no refresh token cannot be recovered; skip
		// the round trip. With a refresh token present the 401 path decides.
		if sess.RefreshToken() == "" && c.session.Expired() {
			return nil, fmt.Errorf("%w: %v", shared.ErrUnauthorized, shared.ErrTokenExpired)
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	resp, respBody, err := c.do(ctx, method, path, payload, sess.AccessToken())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && gated {
		newToken, refreshErr := c.refreshToken(ctx)
		if refreshErr != nil {
			c.logger.Warnf("token refresh failed: %v", refreshErr)
			c.session.Clear()
			return nil, fmt.Errorf("%w: %s", shared.ErrUnauthorized, parseErrorMessage(respBody, resp.StatusCode))
		}

		resp, respBody, err = c.do(ctx, method, path, payload, newToken)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.session.Clear()
			return nil, fmt.Errorf("%w: %s", shared.ErrUnauthorized, parseErrorMessage(respBody, resp.StatusCode))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			// A rejected auth attempt says nothing about the stored pair;
			// only a gated call losing its credentials ends the session.
			if gated {
				c.session.Clear()
			}
			return nil, fmt.Errorf("%w: %s", shared.ErrUnauthorized, parseErrorMessage(respBody, resp.StatusCode))
		}
		return nil, &ServerError{Status: resp.StatusCode, Message: parseErrorMessage(respBody, resp.StatusCode)}
	}

	return respBody, nil
}

// CallJSON performs Call and decodes the response body into out when non-nil.
func (c *Client) CallJSON(ctx context.Context, method, path string, body, out any) error {
	respBody, err := c.Call(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do issues one HTTP round trip with the given bearer token attached.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", shared.GenerateID())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp, respBody, nil
}

// refreshToken exchanges the stored refresh token for a new access token.
// Concurrent 401s share one in-flight refresh; every waiter receives the
// same token or the same error.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		rt := c.session.Get().RefreshToken()
		if rt == "" {
			return nil, shared.ErrNoRefreshToken
		}

		payload, err := json.Marshal(map[string]string{"refresh_token": rt})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal refresh request: %w", err)
		}

		resp, respBody, err := c.do(ctx, http.MethodPost, "/api/auth/refresh", payload, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %s", shared.ErrRefreshFailed, parseErrorMessage(respBody, resp.StatusCode))
		}

		var data any
		if err := json.Unmarshal(respBody, &data); err != nil {
			return nil, fmt.Errorf("%w: malformed response", shared.ErrRefreshFailed)
		}

		token := ExtractAccessToken(data)
		if token == "" {
			return nil, fmt.Errorf("%w: no token in response", shared.ErrRefreshFailed)
		}

		if err := c.session.Update(token, ExtractRefreshToken(data)); err != nil {
			c.logger.Warnf("failed to persist refreshed token: %v", err)
		}

		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// parseErrorMessage extracts a structured message from an error response
// body, falling back to the raw text, then to the status code.
func parseErrorMessage(body []byte, status int) string {
	text := strings.TrimSpace(string(body))

	var structured struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		switch {
		case structured.Detail != "":
			return structured.Detail
		case structured.Message != "":
			return structured.Message
		case structured.Err != "":
			return structured.Err
		}
	}

	if text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
