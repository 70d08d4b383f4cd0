package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/djsadd/elibrary/internal/models"
	"github.com/djsadd/elibrary/internal/shared"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("GetBook", func(t *testing.T) {
		t.Run("Returns Metadata", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/catalog/books/b1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(`{"id":"b1","title":"Walden","download_url":"/files/b1.pdf"}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, newTestSession("tok", ""), nil)
			book, err := c.GetBook(ctx, "b1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if book.Title != "Walden" || book.DownloadURL != "/files/b1.pdf" {
				t.Errorf("unexpected book: %+v", book)
			}
		})

		t.Run("404 Maps To ErrBookNotFound", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, newTestSession("tok", ""), nil)
			_, err := c.GetBook(ctx, "missing")
			if !errors.Is(err, shared.ErrBookNotFound) {
				t.Errorf("expected ErrBookNotFound, got %v", err)
			}
		})
	})

	t.Run("GetUserBookByBook", func(t *testing.T) {
		t.Run("404 Means No Record Yet", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, newTestSession("tok", ""), nil)
			ub, err := c.GetUserBookByBook(ctx, "b1")
			if err != nil {
				t.Fatalf("expected no error for missing record, got %v", err)
			}
			if ub != nil {
				t.Errorf("expected nil record, got %+v", ub)
			}
		})

		t.Run("Scopes By Book ID", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/catalog/userbook/by-book/b1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(`{"id":"ub1","book_id":"b1","current_page":7}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, nil, newTestSession("tok", ""), nil)
			ub, err := c.GetUserBookByBook(ctx, "b1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ub.ID != "ub1" || ub.CurrentPage != 7 {
				t.Errorf("unexpected record: %+v", ub)
			}
		})
	})

	t.Run("PatchUserBook Sends Partial Fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch {
				t.Errorf("expected PATCH, got %s", r.Method)
			}
			if r.URL.Path != "/api/catalog/userbook/ub1" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, newTestSession("tok", ""), nil)
		err := c.PatchUserBook(ctx, "ub1", map[string]any{"current_page": 5})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("ListNotes Filters By Book", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("book_id") != "b1" {
				t.Errorf("expected book_id query, got %s", r.URL.RawQuery)
			}
			w.Write([]byte(`[{"id":"n1","book_id":"b1","page":3,"note":"hi"}]`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, newTestSession("tok", ""), nil)
		notes, err := c.ListNotes(ctx, "b1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(notes) != 1 || notes[0].Text != "hi" || notes[0].Page != 3 {
			t.Errorf("unexpected notes: %+v", notes)
		}
	})

	t.Run("CreateNote Returns Stored Record", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			w.Write([]byte(`{"id":"n9","book_id":"b1","page":3,"note":"hi"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, newTestSession("tok", ""), nil)
		created, err := c.CreateNote(ctx, &models.Note{BookID: "b1", Page: 3, Text: "hi"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.ID != "n9" {
			t.Errorf("expected stored id, got %+v", created)
		}
	})
}

func TestAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("Login Stores Extracted Token Pair", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"access_token":"a1","refresh_token":"r1"}}`))
		}))
		defer server.Close()

		sess := newTestSession("", "")
		c := NewClient(server.URL, nil, sess, nil)

		if err := c.Login(ctx, "e@example.com", "pw", true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := sess.Get()
		if got.AccessToken() != "a1" || got.RefreshToken() != "r1" {
			t.Errorf("unexpected session: %+v", got)
		}
		if !got.Durable {
			t.Error("expected remembered session to be durable")
		}
	})

	t.Run("Login Without Token In Response Fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user":"alice"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, nil, newTestSession("", ""), nil)
		if err := c.Login(ctx, "e@example.com", "pw", false); err == nil {
			t.Error("expected error when no token is present")
		}
	})

	t.Run("Register Signs In When Tokens Returned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"a1"}`))
		}))
		defer server.Close()

		sess := newTestSession("", "")
		c := NewClient(server.URL, nil, sess, nil)

		if err := c.Register(ctx, "e@example.com", "pw", false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sess.Get().AccessToken() != "a1" {
			t.Error("expected register to store the returned token")
		}
	})

	t.Run("Register Without Tokens Leaves Session Empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user":"alice"}`))
		}))
		defer server.Close()

		sess := newTestSession("", "")
		c := NewClient(server.URL, nil, sess, nil)

		if err := c.Register(ctx, "e@example.com", "pw", false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sess.Get().Token != nil {
			t.Error("expected no session without returned tokens")
		}
	})

	t.Run("Logout Destroys Session", func(t *testing.T) {
		sess := newTestSession("tok", "r1")
		c := NewClient("http://example.com", nil, sess, nil)

		c.Logout()
		if sess.Get().Token != nil {
			t.Error("expected cleared session after logout")
		}
	})
}
