// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/djsadd/elibrary/internal/models"
)

// MockCatalog is a test double for the catalog client's progress and
// notes surface. Every call is recorded for assertion.
type MockCatalog struct {
	mu sync.Mutex

	UserBook    *models.UserBook
	GetErr      error
	CreateErr   error
	PatchErr    error
	Notes       []models.Note
	ListErr     error
	NoteErr     error
	NextNoteID  string
	GetCalls    int
	CreateCalls int
	PatchCalls  []map[string]any
	PatchIDs    []string
	Created     []models.Note
	Patched     []map[string]any
	PatchedIDs  []string
}

func (m *MockCatalog) GetUserBookByBook(ctx context.Context, bookID string) (*models.UserBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.UserBook, nil
}

func (m *MockCatalog) CreateUserBook(ctx context.Context, ub *models.UserBook) (*models.UserBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	created := *ub
	created.ID = "ub-created"
	m.UserBook = &created
	return &created, nil
}

func (m *MockCatalog) PatchUserBook(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PatchErr != nil {
		return m.PatchErr
	}
	m.PatchIDs = append(m.PatchIDs, id)
	m.PatchCalls = append(m.PatchCalls, fields)
	return nil
}

func (m *MockCatalog) ListNotes(ctx context.Context, bookID string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Notes, nil
}

func (m *MockCatalog) CreateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NoteErr != nil {
		return nil, m.NoteErr
	}
	created := *note
	created.ID = m.NextNoteID
	if created.ID == "" {
		created.ID = "note-created"
	}
	m.Created = append(m.Created, created)
	return &created, nil
}

func (m *MockCatalog) PatchNote(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NoteErr != nil {
		return m.NoteErr
	}
	m.PatchedIDs = append(m.PatchedIDs, id)
	m.Patched = append(m.Patched, fields)
	return nil
}

// UserBookPatchCount returns how many progress updates were recorded.
func (m *MockCatalog) UserBookPatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.PatchCalls)
}

// LastUserBookPatch returns the most recent progress update, or nil.
func (m *MockCatalog) LastUserBookPatch() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.PatchCalls) == 0 {
		return nil
	}
	return m.PatchCalls[len(m.PatchCalls)-1]
}

// MemorySnapshots is an in-memory stand-in for the progress snapshot
// repository.
type MemorySnapshots struct {
	mu    sync.Mutex
	snaps map[string]*models.ProgressSnapshot
	Err   error
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{snaps: make(map[string]*models.ProgressSnapshot)}
}

func (m *MemorySnapshots) Get(bookID string) (*models.ProgressSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	snap, ok := m.snaps[bookID]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (m *MemorySnapshots) Put(snap *models.ProgressSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *snap
	m.snaps[snap.BookID] = &cp
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
