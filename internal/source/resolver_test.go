package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/djsadd/elibrary/internal/session"
	"github.com/djsadd/elibrary/internal/shared"
)

func newTestSession(access string) *session.Store {
	store := session.NewStore(session.NewMemoryTier(), session.NewMemoryTier(), nil)
	if access != "" {
		store.Set(access, "", false)
	}
	return store
}

func writeTestPDF(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7 test content"), 0644); err != nil {
		t.Fatalf("failed to write test document: %v", err)
	}
	return path
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolve", func(t *testing.T) {
		t.Run("Strict Priority Order", func(t *testing.T) {
			r := NewResolver("https://api.example.com", nil, nil, nil, "/opt/fallback.pdf")

			candidates := r.Resolve(BookRef{
				BookID:      "b1",
				ExplicitURL: "https://cdn.example.com/doc.pdf",
				RemoteURL:   "https://files.example.com/b1.pdf",
			})

			want := []Provenance{
				ProvenanceExplicit,
				ProvenanceRemoteMeta,
				ProvenanceStream,
				ProvenanceDownload,
				ProvenanceFallback,
			}
			if len(candidates) != len(want) {
				t.Fatalf("expected %d candidates, got %d", len(want), len(candidates))
			}
			for i, p := range want {
				if candidates[i].Provenance != p {
					t.Errorf("candidate %d: expected %s, got %s", i, p, candidates[i].Provenance)
				}
			}
			if !candidates[4].Local {
				t.Error("expected fallback candidate to be local")
			}
		})

		t.Run("Relative Remote URL Resolves Against API Base", func(t *testing.T) {
			r := NewResolver("https://api.example.com", nil, nil, nil, "")

			candidates := r.Resolve(BookRef{RemoteURL: "/files/b1.pdf"})
			if len(candidates) != 1 {
				t.Fatalf("expected one candidate, got %d", len(candidates))
			}
			if candidates[0].URL != "https://api.example.com/files/b1.pdf" {
				t.Errorf("unexpected resolved url: %s", candidates[0].URL)
			}
		})

		t.Run("Private Host Remote URL Is Skipped", func(t *testing.T) {
			r := NewResolver("https://api.example.com", nil, nil, nil, "")

			candidates := r.Resolve(BookRef{
				BookID:    "b1",
				RemoteURL: "http://10.0.0.5/internal/b1.pdf",
			})
			for _, cand := range candidates {
				if cand.Provenance == ProvenanceRemoteMeta {
					t.Errorf("expected private remote url to be skipped, got %s", cand.URL)
				}
			}
		})

		t.Run("Endpoint URLs Are Derived From Book ID", func(t *testing.T) {
			r := NewResolver("https://api.example.com", nil, nil, nil, "")

			candidates := r.Resolve(BookRef{BookID: "b 1"})
			if len(candidates) != 2 {
				t.Fatalf("expected two candidates, got %d", len(candidates))
			}
			if !strings.HasSuffix(candidates[0].URL, "/api/catalog/books/b%201/stream") {
				t.Errorf("unexpected stream url: %s", candidates[0].URL)
			}
			if !strings.HasSuffix(candidates[1].URL, "/api/catalog/books/b%201/download") {
				t.Errorf("unexpected download url: %s", candidates[1].URL)
			}
		})

		t.Run("Empty Reference Yields Nothing", func(t *testing.T) {
			r := NewResolver("https://api.example.com", nil, nil, nil, "")
			if candidates := r.Resolve(BookRef{}); len(candidates) != 0 {
				t.Errorf("expected no candidates, got %d", len(candidates))
			}
		})
	})

	t.Run("Probe", func(t *testing.T) {
		t.Run("Accepts PDF Signature", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasPrefix(r.Header.Get("Range"), "bytes=0-") {
					t.Errorf("expected ranged request, got %q", r.Header.Get("Range"))
				}
				w.Write([]byte("%PDF-1.7 content"))
			}))
			defer server.Close()

			r := NewResolver(server.URL, nil, nil, nil, "")
			err := r.Probe(ctx, Candidate{URL: server.URL + "/doc.pdf", Provenance: ProvenanceStream})
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("Rejects Signature Mismatch", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>login page</html>"))
			}))
			defer server.Close()

			r := NewResolver(server.URL, nil, nil, nil, "")
			err := r.Probe(ctx, Candidate{URL: server.URL + "/doc.pdf", Provenance: ProvenanceStream})
			if err == nil {
				t.Error("expected error for non-PDF content")
			}
		})

		t.Run("Rejects Error Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			r := NewResolver(server.URL, nil, nil, nil, "")
			err := r.Probe(ctx, Candidate{URL: server.URL + "/doc.pdf", Provenance: ProvenanceStream})
			if err == nil {
				t.Error("expected error for 403 response")
			}
		})

		t.Run("Sends Bearer Only Same-Origin", func(t *testing.T) {
			var crossOriginAuth string
			other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				crossOriginAuth = r.Header.Get("Authorization")
				w.Write([]byte("%PDF-1.7"))
			}))
			defer other.Close()

			var sameOriginAuth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sameOriginAuth = r.Header.Get("Authorization")
				w.Write([]byte("%PDF-1.7"))
			}))
			defer server.Close()

			r := NewResolver(server.URL, nil, newTestSession("tok"), nil, "")

			r.Probe(ctx, Candidate{URL: server.URL + "/doc.pdf"})
			if sameOriginAuth != "Bearer tok" {
				t.Errorf("expected bearer on same-origin probe, got %q", sameOriginAuth)
			}

			r.Probe(ctx, Candidate{URL: other.URL + "/doc.pdf"})
			if crossOriginAuth != "" {
				t.Errorf("expected no bearer cross-origin, got %q", crossOriginAuth)
			}
		})

		t.Run("Validates Local Files", func(t *testing.T) {
			path := writeTestPDF(t, t.TempDir())

			r := NewResolver("https://api.example.com", nil, nil, nil, "")
			if err := r.Probe(ctx, Candidate{URL: path, Local: true}); err != nil {
				t.Errorf("expected no error, got %v", err)
			}

			bad := filepath.Join(t.TempDir(), "bad.pdf")
			os.WriteFile(bad, []byte("plain text"), 0644)
			if err := r.Probe(ctx, Candidate{URL: bad, Local: true}); err == nil {
				t.Error("expected error for non-PDF local file")
			}
		})
	})

	t.Run("Fetch", func(t *testing.T) {
		t.Run("Streams Remote To Temp File", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("%PDF-1.7 full document"))
			}))
			defer server.Close()

			r := NewResolver(server.URL, nil, nil, nil, "")
			path, err := r.Fetch(ctx, Candidate{URL: server.URL + "/doc.pdf"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer os.Remove(path)

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("expected readable temp file, got %v", err)
			}
			if string(data) != "%PDF-1.7 full document" {
				t.Errorf("unexpected temp file content: %q", data)
			}
		})

		t.Run("Local Candidate Returns Its Path", func(t *testing.T) {
			r := NewResolver("https://api.example.com", nil, nil, nil, "")
			path, err := r.Fetch(ctx, Candidate{URL: "/opt/fallback.pdf", Local: true})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if path != "/opt/fallback.pdf" {
				t.Errorf("unexpected path: %s", path)
			}
		})
	})

	t.Run("Locate", func(t *testing.T) {
		t.Run("First Valid Candidate Wins", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.Contains(r.URL.Path, "/stream") {
					w.Write([]byte("<html>not a pdf</html>"))
					return
				}
				w.Write([]byte("%PDF-1.7 document"))
			}))
			defer server.Close()

			r := NewResolver(server.URL, nil, nil, nil, "")

			var opened Candidate
			cand, err := r.Locate(ctx, BookRef{BookID: "b1"}, func(path string, c Candidate) error {
				opened = c
				return nil
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cand.Provenance != ProvenanceDownload || opened.Provenance != ProvenanceDownload {
				t.Errorf("expected download candidate to win, got %s", cand.Provenance)
			}
		})

		t.Run("Open Failure Falls Through", func(t *testing.T) {
			dir := t.TempDir()
			fallback := writeTestPDF(t, dir)

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("%PDF-1.7 document"))
			}))
			defer server.Close()

			r := NewResolver(server.URL, nil, nil, nil, fallback)

			var openedPaths []string
			cand, err := r.Locate(ctx, BookRef{BookID: "b1"}, func(path string, c Candidate) error {
				openedPaths = append(openedPaths, path)
				if !c.Local {
					return errors.New("corrupt download")
				}
				return nil
			})
			if err != nil {
				t.Fatalf("expected fallback to win, got %v", err)
			}
			if cand.Provenance != ProvenanceFallback {
				t.Errorf("expected fallback candidate, got %s", cand.Provenance)
			}
			if len(openedPaths) != 3 {
				t.Errorf("expected three open attempts, got %d", len(openedPaths))
			}
		})

		t.Run("All Candidates Failing Yields ErrSourceUnavailable", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			r := NewResolver(server.URL, nil, nil, nil, "")
			_, err := r.Locate(ctx, BookRef{BookID: "b1"}, func(string, Candidate) error { return nil })
			if !errors.Is(err, shared.ErrSourceUnavailable) {
				t.Errorf("expected ErrSourceUnavailable, got %v", err)
			}
		})

		t.Run("No Candidates Yields ErrSourceUnavailable", func(t *testing.T) {
			r := NewResolver("https://api.example.com", nil, nil, nil, "")
			_, err := r.Locate(ctx, BookRef{}, func(string, Candidate) error { return nil })
			if !errors.Is(err, shared.ErrSourceUnavailable) {
				t.Errorf("expected ErrSourceUnavailable, got %v", err)
			}
		})
	})
}

func TestIsPrivateHost(t *testing.T) {
	private := []string{
		"http://localhost/doc.pdf",
		"http://127.0.0.1/doc.pdf",
		"http://10.1.2.3/doc.pdf",
		"http://192.168.0.10/doc.pdf",
		"http://169.254.1.1/doc.pdf",
		"http://files.local/doc.pdf",
		"http://registry.internal/doc.pdf",
		"http://intranet/doc.pdf",
		"http://0.0.0.0/doc.pdf",
	}
	for _, u := range private {
		if !isPrivateHost(u) {
			t.Errorf("expected %s to be private", u)
		}
	}

	public := []string{
		"https://files.example.com/doc.pdf",
		"http://93.184.216.34/doc.pdf",
	}
	for _, u := range public {
		if isPrivateHost(u) {
			t.Errorf("expected %s to be public", u)
		}
	}
}
