package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrUnauthorized   = fmt.Errorf("unauthorized")
	ErrTokenExpired   = fmt.Errorf("access token expired")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")

	// API and document errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrServerError       = fmt.Errorf("server error")
	ErrSourceUnavailable = fmt.Errorf("no readable document source")
	ErrOpenFailed        = fmt.Errorf("failed to open document")
	ErrBookNotFound      = fmt.Errorf("book not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
