package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/djsadd/elibrary/internal/models"
	"github.com/djsadd/elibrary/internal/shared"
)

// ProgressAPI is the slice of the catalog client the progress
// synchronizer needs.
type ProgressAPI interface {
	GetUserBookByBook(ctx context.Context, bookID string) (*models.UserBook, error)
	CreateUserBook(ctx context.Context, ub *models.UserBook) (*models.UserBook, error)
	PatchUserBook(ctx context.Context, id string, fields map[string]any) error
}

// SnapshotCache is local storage for the last known progress per book.
type SnapshotCache interface {
	Get(bookID string) (*models.ProgressSnapshot, error)
	Put(snap *models.ProgressSnapshot) error
}

// DefaultProgressDebounce is the quiet period between the last page turn
// and the progress push.
const DefaultProgressDebounce = 500 * time.Millisecond

// Progress keeps the remote reading-progress record for one book in step
// with the reader's current page. Page turns are debounced so flipping
// through a chapter produces a single update carrying the final page.
// Sync failures are logged and swallowed; reading continues regardless.
type Progress struct {
	api    ProgressAPI
	cache  SnapshotCache
	logger *log.Logger

	mu         sync.Mutex
	bookID     string
	recordID   string
	totalPages int
	lastPage   int
	status     string

	debounce *Debouncer
}

// NewProgress creates a progress synchronizer. cache may be nil when no
// local database is configured.
func NewProgress(api ProgressAPI, cache SnapshotCache, logger *log.Logger, quiet time.Duration) *Progress {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if quiet <= 0 {
		quiet = DefaultProgressDebounce
	}
	return &Progress{
		api:      api,
		cache:    cache,
		logger:   logger,
		status:   "reading",
		debounce: NewDebouncer(quiet),
	}
}

// Enter resolves the progress record for a book and returns the page the
// reader should open on. An explicit page (from a deep link) wins over
// the resumed position. When no record exists one is created at page 0
// with status "reading"; when the lookup fails entirely the reader still
// opens, seeded from the local snapshot if one is cached.
func (p *Progress) Enter(ctx context.Context, bookID string, totalPages, explicitPage int) int {
	p.mu.Lock()
	p.bookID = bookID
	p.recordID = ""
	p.totalPages = totalPages
	p.mu.Unlock()

	startPage := 1
	if p.cache != nil {
		if snap, err := p.cache.Get(bookID); err != nil {
			p.logger.Warnf("failed to read progress snapshot: %v", err)
		} else if snap != nil {
			if snap.CurrentPage > 0 {
				startPage = snap.CurrentPage
			}
			p.mu.Lock()
			p.recordID = snap.UserBookID
			p.mu.Unlock()
		}
	}

	record, err := p.api.GetUserBookByBook(ctx, bookID)
	if err != nil {
		p.logger.Warnf("failed to fetch progress record for book %s: %v", bookID, err)
		return p.resolveStart(startPage, explicitPage, totalPages)
	}

	if record == nil {
		record, err = p.api.CreateUserBook(ctx, &models.UserBook{
			BookID:      bookID,
			CurrentPage: 0,
			TotalPages:  totalPages,
			Status:      "reading",
		})
		if err != nil {
			p.logger.Warnf("failed to create progress record for book %s: %v", bookID, err)
			return p.resolveStart(startPage, explicitPage, totalPages)
		}
	}

	p.mu.Lock()
	p.recordID = record.ID
	if record.Status != "" {
		p.status = record.Status
	}
	p.mu.Unlock()

	if record.CurrentPage > 0 {
		startPage = record.CurrentPage
	}
	p.snapshot(record.CurrentPage)

	return p.resolveStart(startPage, explicitPage, totalPages)
}

func (p *Progress) resolveStart(resumed, explicit, total int) int {
	page := resumed
	if explicit > 0 {
		page = explicit
	}
	if page < 1 {
		page = 1
	}
	if total > 0 && page > total {
		page = total
	}
	return page
}

// RecordID returns the id of the remote progress record, empty until
// Enter has resolved one.
func (p *Progress) RecordID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recordID
}

// PageChanged records a page turn. The local snapshot updates
// immediately; the remote push waits out the quiet period so only the
// final page of a rapid flip is sent.
func (p *Progress) PageChanged(ctx context.Context, page int) {
	p.mu.Lock()
	p.lastPage = page
	p.mu.Unlock()

	p.snapshot(page)
	p.debounce.Trigger(func() { p.push(ctx) })
}

// Flush pushes any pending page change immediately. Call on reader exit
// so the last position is never lost to the debounce window.
func (p *Progress) Flush() {
	p.debounce.Flush()
}

// Close cancels any pending push without sending it.
func (p *Progress) Close() {
	p.debounce.Stop()
}

func (p *Progress) push(ctx context.Context) {
	p.mu.Lock()
	id := p.recordID
	page := p.lastPage
	total := p.totalPages
	status := p.status
	p.mu.Unlock()

	if id == "" {
		p.logger.Debug("skipping progress push, no record resolved")
		return
	}

	err := p.api.PatchUserBook(ctx, id, map[string]any{
		"current_page":     page,
		"total_pages":      total,
		"progress_percent": models.Percent(page, total),
		"status":           status,
	})
	if err != nil {
		p.logger.Warnf("failed to push progress for book %s: %v", p.bookID, err)
		return
	}
	p.logger.Debugf("pushed progress: page %d of %d", page, total)
}

func (p *Progress) snapshot(page int) {
	if p.cache == nil {
		return
	}

	p.mu.Lock()
	snap := &models.ProgressSnapshot{
		BookID:          p.bookID,
		UserBookID:      p.recordID,
		CurrentPage:     page,
		TotalPages:      p.totalPages,
		ProgressPercent: models.Percent(page, p.totalPages),
		Status:          p.status,
	}
	p.mu.Unlock()

	if err := p.cache.Put(snap); err != nil {
		p.logger.Warnf("failed to write progress snapshot: %v", err)
	}
}
