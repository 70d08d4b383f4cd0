package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/djsadd/elibrary/internal/models"
)

// ProgressRepository caches per-book progress snapshots so the reader can
// pre-seed its position before the userbook round-trip completes.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new [ProgressRepository] with the given database connection
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get retrieves the cached snapshot for a book, or nil when none exists.
func (r *ProgressRepository) Get(bookID string) (*models.ProgressSnapshot, error) {
	query := `
		SELECT book_id, userbook_id, current_page, total_pages, progress_percent, status, updated_at
		FROM progress_snapshots
		WHERE book_id = ?
	`

	var (
		snap       models.ProgressSnapshot
		userbookID sql.NullString
		updatedAt  time.Time
	)

	err := r.db.QueryRow(query, bookID).Scan(
		&snap.BookID, &userbookID, &snap.CurrentPage, &snap.TotalPages,
		&snap.ProgressPercent, &snap.Status, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query progress snapshot: %w", err)
	}

	if userbookID.Valid {
		snap.UserBookID = userbookID.String
	}
	snap.UpdatedAt = updatedAt

	return &snap, nil
}

// Put upserts the snapshot for a book.
func (r *ProgressRepository) Put(snap *models.ProgressSnapshot) error {
	query := `
		INSERT INTO progress_snapshots (book_id, userbook_id, current_page, total_pages, progress_percent, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			userbook_id = excluded.userbook_id,
			current_page = excluded.current_page,
			total_pages = excluded.total_pages,
			progress_percent = excluded.progress_percent,
			status = excluded.status,
			updated_at = excluded.updated_at
	`

	var userbookID any
	if snap.UserBookID != "" {
		userbookID = snap.UserBookID
	}

	_, err := r.db.Exec(query,
		snap.BookID, userbookID, snap.CurrentPage, snap.TotalPages,
		snap.ProgressPercent, snap.Status, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to write progress snapshot: %w", err)
	}

	return nil
}

// Delete removes the snapshot for a book.
func (r *ProgressRepository) Delete(bookID string) error {
	if _, err := r.db.Exec(`DELETE FROM progress_snapshots WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("failed to delete progress snapshot: %w", err)
	}
	return nil
}

// List retrieves all cached snapshots ordered by most recently updated.
func (r *ProgressRepository) List() ([]*models.ProgressSnapshot, error) {
	query := `
		SELECT book_id, userbook_id, current_page, total_pages, progress_percent, status, updated_at
		FROM progress_snapshots
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*models.ProgressSnapshot
	for rows.Next() {
		var (
			snap       models.ProgressSnapshot
			userbookID sql.NullString
			updatedAt  time.Time
		)
		err := rows.Scan(
			&snap.BookID, &userbookID, &snap.CurrentPage, &snap.TotalPages,
			&snap.ProgressPercent, &snap.Status, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress snapshot: %w", err)
		}
		if userbookID.Valid {
			snap.UserBookID = userbookID.String
		}
		snap.UpdatedAt = updatedAt
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snaps, nil
}
