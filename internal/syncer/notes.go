package syncer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/djsadd/elibrary/internal/models"
	"github.com/djsadd/elibrary/internal/shared"
)

// NotesAPI is the slice of the catalog client the notes synchronizer
// needs.
type NotesAPI interface {
	ListNotes(ctx context.Context, bookID string) ([]models.Note, error)
	CreateNote(ctx context.Context, note *models.Note) (*models.Note, error)
	PatchNote(ctx context.Context, id string, fields map[string]any) error
}

// DefaultNotesDebounce is the quiet period between the last keystroke
// and the note save.
const DefaultNotesDebounce = 800 * time.Millisecond

// SaveState is the note save indicator shown to the reader.
type SaveState int

const (
	SaveIdle SaveState = iota
	SavePending
	SaveDone
	SaveFailed
)

// Notes keeps one free-text note per page in step with the backend.
// Edits echo locally at once and persist after a quiet period; a save
// identical to the last successful one is skipped.
type Notes struct {
	api    NotesAPI
	logger *log.Logger

	mu       sync.Mutex
	bookID   string
	drafts   map[int]string // page → local text
	remote   map[int]string // page → backend note id
	lastSig  string
	state    SaveState
	debounce *Debouncer
}

// NewNotes creates a notes synchronizer.
func NewNotes(api NotesAPI, logger *log.Logger, quiet time.Duration) *Notes {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if quiet <= 0 {
		quiet = DefaultNotesDebounce
	}
	return &Notes{
		api:      api,
		logger:   logger,
		drafts:   make(map[int]string),
		remote:   make(map[int]string),
		debounce: NewDebouncer(quiet),
	}
}

// Enter loads all notes for a book and indexes them by page. When the
// backend returns several notes for one page the last one wins.
func (n *Notes) Enter(ctx context.Context, bookID string) error {
	notes, err := n.api.ListNotes(ctx, bookID)
	if err != nil {
		return fmt.Errorf("failed to load notes for book %s: %w", bookID, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.bookID = bookID
	n.drafts = make(map[int]string)
	n.remote = make(map[int]string)
	n.lastSig = ""
	n.state = SaveIdle

	for _, note := range notes {
		n.drafts[note.Page] = note.Text
		n.remote[note.Page] = note.ID
	}

	return nil
}

// All returns every non-empty draft as a note, ordered by page.
func (n *Notes) All() []models.Note {
	n.mu.Lock()
	defer n.mu.Unlock()

	pages := make([]int, 0, len(n.drafts))
	for page, text := range n.drafts {
		if strings.TrimSpace(text) != "" {
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)

	notes := make([]models.Note, 0, len(pages))
	for _, page := range pages {
		notes = append(notes, models.Note{
			ID:     n.remote[page],
			BookID: n.bookID,
			Page:   page,
			Text:   n.drafts[page],
		})
	}
	return notes
}

// Draft returns the local note text for a page.
func (n *Notes) Draft(page int) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.drafts[page]
}

// State returns the current save indicator.
func (n *Notes) State() SaveState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Edit records a keystroke's worth of note text for a page. The draft
// updates immediately; the save fires after the quiet period.
func (n *Notes) Edit(ctx context.Context, page int, text string) {
	n.mu.Lock()
	n.drafts[page] = text
	n.state = SavePending
	n.mu.Unlock()

	n.debounce.Trigger(func() { n.save(ctx, page) })
}

// Flush saves any pending edit immediately.
func (n *Notes) Flush() {
	n.debounce.Flush()
}

// Close cancels any pending save without sending it.
func (n *Notes) Close() {
	n.debounce.Stop()
}

func (n *Notes) save(ctx context.Context, page int) {
	n.mu.Lock()
	bookID := n.bookID
	text := strings.TrimSpace(n.drafts[page])
	remoteID := n.remote[page]
	n.mu.Unlock()

	// An emptied note is never sent; clearing the signature lets the
	// same text save again if retyped.
	if text == "" {
		n.mu.Lock()
		n.lastSig = ""
		n.state = SaveIdle
		n.mu.Unlock()
		return
	}

	sig := fmt.Sprintf("%s|%d|%s", bookID, page, text)

	n.mu.Lock()
	if sig == n.lastSig {
		n.state = SaveDone
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	var err error
	if remoteID != "" {
		err = n.api.PatchNote(ctx, remoteID, map[string]any{"page": page, "note": text})
	} else {
		var created *models.Note
		created, err = n.api.CreateNote(ctx, &models.Note{BookID: bookID, Page: page, Text: text})
		if err == nil && created != nil && created.ID != "" {
			n.mu.Lock()
			n.remote[page] = created.ID
			n.mu.Unlock()
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err != nil {
		n.state = SaveFailed
		n.logger.Warnf("failed to save note for page %d: %v", page, err)
		return
	}

	n.lastSig = sig
	n.state = SaveDone
	n.logger.Debugf("saved note for page %d", page)
}
