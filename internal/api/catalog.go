package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/djsadd/elibrary/internal/models"
	"github.com/djsadd/elibrary/internal/shared"
)

// GetBook retrieves catalog metadata for a single title.
func (c *Client) GetBook(ctx context.Context, bookID string) (*models.Book, error) {
	var book models.Book
	path := fmt.Sprintf("/api/catalog/books/%s", url.PathEscape(bookID))
	if err := c.CallJSON(ctx, http.MethodGet, path, nil, &book); err != nil {
		var serr *ServerError
		if errors.As(err, &serr) && serr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", shared.ErrBookNotFound, bookID)
		}
		return nil, err
	}
	return &book, nil
}

// StreamURL returns the ranged streaming endpoint for a book.
func (c *Client) StreamURL(bookID string) string {
	return fmt.Sprintf("%s/api/catalog/books/%s/stream", c.baseURL, url.PathEscape(bookID))
}

// DownloadURL returns the full-download endpoint for a book.
func (c *Client) DownloadURL(bookID string) string {
	return fmt.Sprintf("%s/api/catalog/books/%s/download", c.baseURL, url.PathEscape(bookID))
}

// GetUserBookByBook fetches the reading-progress record scoped by book id.
// Returns nil without error when no record exists yet.
func (c *Client) GetUserBookByBook(ctx context.Context, bookID string) (*models.UserBook, error) {
	var ub models.UserBook
	path := fmt.Sprintf("/api/catalog/userbook/by-book/%s", url.PathEscape(bookID))
	if err := c.CallJSON(ctx, http.MethodGet, path, nil, &ub); err != nil {
		var serr *ServerError
		if errors.As(err, &serr) && serr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ub, nil
}

// ListUserBooks fetches all reading-progress records for the current user.
func (c *Client) ListUserBooks(ctx context.Context) ([]models.UserBook, error) {
	var ubs []models.UserBook
	if err := c.CallJSON(ctx, http.MethodGet, "/api/catalog/userbook", nil, &ubs); err != nil {
		return nil, err
	}
	return ubs, nil
}

// CreateUserBook creates a fresh reading-progress record.
func (c *Client) CreateUserBook(ctx context.Context, ub *models.UserBook) (*models.UserBook, error) {
	var created models.UserBook
	if err := c.CallJSON(ctx, http.MethodPost, "/api/catalog/userbook", ub, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// PatchUserBook updates fields on an existing reading-progress record.
func (c *Client) PatchUserBook(ctx context.Context, id string, fields map[string]any) error {
	path := fmt.Sprintf("/api/catalog/userbook/%s", url.PathEscape(id))
	return c.CallJSON(ctx, http.MethodPatch, path, fields, nil)
}

// ListNotes fetches all notes for a book.
func (c *Client) ListNotes(ctx context.Context, bookID string) ([]models.Note, error) {
	var notes []models.Note
	path := "/api/catalog/notes?book_id=" + url.QueryEscape(bookID)
	if err := c.CallJSON(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote creates a note and returns the stored record with its id.
func (c *Client) CreateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	var created models.Note
	if err := c.CallJSON(ctx, http.MethodPost, "/api/catalog/notes", note, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// PatchNote updates an existing note.
func (c *Client) PatchNote(ctx context.Context, id string, fields map[string]any) error {
	path := fmt.Sprintf("/api/catalog/notes/%s", url.PathEscape(id))
	return c.CallJSON(ctx, http.MethodPatch, path, fields, nil)
}
