package api

import "regexp"

// The backend's token responses are not a fixed shape across deployments.
// These extractors are the tolerant-parsing boundary: a documented search
// order over known field names, then a bounded scan of top-level string
// fields whose key looks token-like. They are adapters, not core logic.

var (
	accessKeyPattern  = regexp.MustCompile(`(?i)token|jwt|access`)
	refreshKeyPattern = regexp.MustCompile(`(?i)refresh`)
)

// ExtractAccessToken searches a decoded JSON value for an access token.
//
// Search order: the value itself when it is a string, then the
// access_token, token, and jwt fields, then the nested data and result
// objects, then any top-level string field with a token-like key.
func ExtractAccessToken(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		for _, key := range []string{"access_token", "token", "jwt"} {
			if s, ok := val[key].(string); ok && s != "" {
				return s
			}
		}
		for _, key := range []string{"data", "result"} {
			if nested, ok := val[key]; ok {
				if s := ExtractAccessToken(nested); s != "" {
					return s
				}
			}
		}
		for key, field := range val {
			if s, ok := field.(string); ok && s != "" && accessKeyPattern.MatchString(key) {
				return s
			}
		}
	}
	return ""
}

// ExtractRefreshToken searches a decoded JSON value for a refresh token:
// the refresh_token field, the nested data object, then any top-level
// string field whose key mentions refresh.
func ExtractRefreshToken(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}

	if s, ok := obj["refresh_token"].(string); ok && s != "" {
		return s
	}
	if nested, ok := obj["data"]; ok {
		if s := ExtractRefreshToken(nested); s != "" {
			return s
		}
	}
	for key, field := range obj {
		if s, ok := field.(string); ok && s != "" && refreshKeyPattern.MatchString(key) {
			return s
		}
	}
	return ""
}
