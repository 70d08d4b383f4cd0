package api

import "testing"

func TestExtractAccessToken(t *testing.T) {
	t.Run("Bare String Is The Token", func(t *testing.T) {
		if got := ExtractAccessToken("raw-token"); got != "raw-token" {
			t.Errorf("expected raw-token, got %q", got)
		}
	})

	t.Run("Known Field Names In Order", func(t *testing.T) {
		cases := map[string]map[string]any{
			"access_token": {"access_token": "a"},
			"token":        {"token": "a"},
			"jwt":          {"jwt": "a"},
		}
		for name, payload := range cases {
			t.Run(name, func(t *testing.T) {
				if got := ExtractAccessToken(payload); got != "a" {
					t.Errorf("expected a, got %q", got)
				}
			})
		}
	})

	t.Run("access_token Wins Over Later Fields", func(t *testing.T) {
		payload := map[string]any{"access_token": "first", "token": "second"}
		if got := ExtractAccessToken(payload); got != "first" {
			t.Errorf("expected first, got %q", got)
		}
	})

	t.Run("Nested data And result Objects", func(t *testing.T) {
		payload := map[string]any{"data": map[string]any{"access_token": "nested"}}
		if got := ExtractAccessToken(payload); got != "nested" {
			t.Errorf("expected nested, got %q", got)
		}

		payload = map[string]any{"result": map[string]any{"token": "deep"}}
		if got := ExtractAccessToken(payload); got != "deep" {
			t.Errorf("expected deep, got %q", got)
		}
	})

	t.Run("Token-Like Key Scan", func(t *testing.T) {
		payload := map[string]any{"sessionJWT": "scanned", "user": "alice"}
		if got := ExtractAccessToken(payload); got != "scanned" {
			t.Errorf("expected scanned, got %q", got)
		}
	})

	t.Run("Nothing Token-Like Returns Empty", func(t *testing.T) {
		payload := map[string]any{"user": "alice", "count": 3.0}
		if got := ExtractAccessToken(payload); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})

	t.Run("Non-Object Non-String Returns Empty", func(t *testing.T) {
		if got := ExtractAccessToken(42.0); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

func TestExtractRefreshToken(t *testing.T) {
	t.Run("refresh_token Field", func(t *testing.T) {
		payload := map[string]any{"refresh_token": "r"}
		if got := ExtractRefreshToken(payload); got != "r" {
			t.Errorf("expected r, got %q", got)
		}
	})

	t.Run("Nested data Object", func(t *testing.T) {
		payload := map[string]any{"data": map[string]any{"refresh_token": "r"}}
		if got := ExtractRefreshToken(payload); got != "r" {
			t.Errorf("expected r, got %q", got)
		}
	})

	t.Run("Refresh-Like Key Scan", func(t *testing.T) {
		payload := map[string]any{"refreshJWT": "r"}
		if got := ExtractRefreshToken(payload); got != "r" {
			t.Errorf("expected r, got %q", got)
		}
	})

	t.Run("Bare String Is Not A Refresh Token", func(t *testing.T) {
		if got := ExtractRefreshToken("raw"); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
