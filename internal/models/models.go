package models

import "time"

// Book represents catalog metadata for a single title.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Year        string   `json:"year,omitempty"`
	Lang        string   `json:"lang,omitempty"`
	PubInfo     string   `json:"pub_info,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Cover       string   `json:"cover,omitempty"`
	FileID      string   `json:"file_id,omitempty"`
	DownloadURL string   `json:"download_url,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Subjects    []string `json:"subjects,omitempty"`
}

// UserBook is the remote reading-progress record, one per (user, book).
type UserBook struct {
	ID              string `json:"id"`
	BookID          string `json:"book_id"`
	CurrentPage     int    `json:"current_page"`
	TotalPages      int    `json:"total_pages"`
	ProgressPercent int    `json:"progress_percent"`
	Status          string `json:"status"`
	ReadingTimeSec  int    `json:"reading_time_seconds,omitempty"`
}

// Note is a free-text annotation keyed by (book, page).
type Note struct {
	ID        string `json:"id"`
	BookID    string `json:"book_id"`
	Page      int    `json:"page"`
	Text      string `json:"note"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ProgressSnapshot is the locally cached copy of a UserBook record, used to
// pre-seed reader state before the network round-trip completes.
type ProgressSnapshot struct {
	BookID          string
	UserBookID      string
	CurrentPage     int
	TotalPages      int
	ProgressPercent int
	Status          string
	UpdatedAt       time.Time
}

// Percent computes the rounded progress percentage for page of total,
// clamped to [0, 100].
func Percent(page, total int) int {
	if total <= 0 {
		return 0
	}
	pct := (page*100 + total/2) / total
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
