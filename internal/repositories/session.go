package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// durableTierKey is the row key for the single durable session record.
const durableTierKey = "durable"

// SessionRepository persists the durable session tier. It implements
// session.Tier over a single row keyed by tier name.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Read returns the stored token pair, or nil when signed out durably.
func (r *SessionRepository) Read() (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, expires_at
		FROM sessions
		WHERE tier = ?
	`

	var (
		access    string
		refresh   sql.NullString
		expiresAt sql.NullInt64
	)

	err := r.db.QueryRow(query, durableTierKey).Scan(&access, &refresh, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	tok := &oauth2.Token{AccessToken: access}
	if refresh.Valid {
		tok.RefreshToken = refresh.String
	}
	if expiresAt.Valid {
		tok.Expiry = time.Unix(expiresAt.Int64, 0)
	}

	return tok, nil
}

// Write upserts the durable token pair.
func (r *SessionRepository) Write(tok *oauth2.Token) error {
	query := `
		INSERT INTO sessions (tier, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tier) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	var refresh any
	if tok.RefreshToken != "" {
		refresh = tok.RefreshToken
	}

	var expiresAt any
	if !tok.Expiry.IsZero() {
		expiresAt = tok.Expiry.Unix()
	}

	if _, err := r.db.Exec(query, durableTierKey, tok.AccessToken, refresh, expiresAt, time.Now()); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	return nil
}

// Clear removes the durable token pair.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE tier = ?`, durableTierKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
