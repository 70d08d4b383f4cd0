package reader

import (
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"github.com/djsadd/elibrary/internal/shared"
)

// State is the renderer lifecycle: Empty → Loading → Ready → (Error |
// Empty on teardown).
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateError
)

// SpreadMode selects one- or two-page display.
type SpreadMode int

const (
	SpreadSingle SpreadMode = iota
	SpreadDual
)

// Zoom bounds.
const (
	MinZoom  = 0.5
	MaxZoom  = 2.5
	ZoomStep = 0.1
)

// ViewState is the current navigation state of the open document.
type ViewState struct {
	CurrentPage int
	Zoom        float64
	Spread      SpreadMode
}

// Spread holds the rendered surfaces for the current view. Secondary is
// nil in single mode or when the current page is the last one.
type Spread struct {
	Primary   image.Image
	Secondary image.Image
}

// Renderer owns the document handle for the lifetime of one reader
// session. One book open at a time; loading a new reference closes the
// previous handle.
type Renderer struct {
	state  State
	doc    Document
	view   ViewState
	logger *log.Logger
}

// NewRenderer creates an empty renderer.
func NewRenderer(logger *log.Logger) *Renderer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Renderer{
		state:  StateEmpty,
		view:   ViewState{CurrentPage: 1, Zoom: 1.0, Spread: SpreadDual},
		logger: logger,
	}
}

// Open adopts a parsed document handle. provenance names the candidate
// source for diagnostics.
func (r *Renderer) Open(doc Document, provenance string) error {
	if doc.PageCount() < 1 {
		doc.Close()
		return fmt.Errorf("%w: empty document (%s)", shared.ErrOpenFailed, provenance)
	}

	r.Close()
	r.doc = doc
	r.state = StateReady
	r.view.CurrentPage = clampPage(r.view.CurrentPage, doc.PageCount())
	r.logger.Debugf("opened document with %d pages from %s", doc.PageCount(), provenance)
	return nil
}

// OpenPath parses and adopts the document at a local path.
func (r *Renderer) OpenPath(path, provenance string) error {
	r.state = StateLoading
	doc, err := OpenFile(path)
	if err != nil {
		r.state = StateError
		return fmt.Errorf("%w: %v (%s)", shared.ErrOpenFailed, err, provenance)
	}
	return r.Open(doc, provenance)
}

// Close releases the document handle and returns to the empty state.
func (r *Renderer) Close() {
	if r.doc != nil {
		if err := r.doc.Close(); err != nil {
			r.logger.Warnf("failed to close document: %v", err)
		}
		r.doc = nil
	}
	r.state = StateEmpty
}

func (r *Renderer) State() State    { return r.state }
func (r *Renderer) View() ViewState { return r.view }

// PageCount returns the total page count, or 0 when no document is open.
func (r *Renderer) PageCount() int {
	if r.doc == nil {
		return 0
	}
	return r.doc.PageCount()
}

// RenderSpread draws the current page into the primary surface and, in
// dual mode, the following page into the secondary surface when it
// exists. Single mode always leaves the secondary surface nil.
func (r *Renderer) RenderSpread() (*Spread, error) {
	if r.doc == nil {
		return nil, fmt.Errorf("no document open")
	}

	spread := &Spread{}
	page := r.view.CurrentPage

	primary, err := r.doc.Render(page, r.view.Zoom)
	if err != nil {
		return nil, err
	}
	spread.Primary = primary

	if r.view.Spread == SpreadDual && page+1 <= r.doc.PageCount() {
		secondary, err := r.doc.Render(page+1, r.view.Zoom)
		if err != nil {
			return nil, err
		}
		spread.Secondary = secondary
	}

	return spread, nil
}

// SpreadText extracts text for the current spread, for terminal display.
// The second string is empty in single mode or past the last page.
func (r *Renderer) SpreadText() (string, string, error) {
	if r.doc == nil {
		return "", "", fmt.Errorf("no document open")
	}

	page := r.view.CurrentPage
	primary, err := r.doc.Text(page)
	if err != nil {
		return "", "", err
	}

	var secondary string
	if r.view.Spread == SpreadDual && page+1 <= r.doc.PageCount() {
		secondary, err = r.doc.Text(page + 1)
		if err != nil {
			return primary, "", err
		}
	}

	return primary, secondary, nil
}

// GoTo jumps to a page, clamped to [1, PageCount].
func (r *Renderer) GoTo(page int) {
	r.view.CurrentPage = clampPage(page, r.PageCount())
}

// Advance moves one spread forward or backward: two pages in dual mode,
// one in single mode, clamped.
func (r *Renderer) Advance(dir int) {
	step := 1
	if r.view.Spread == SpreadDual {
		step = 2
	}
	if dir < 0 {
		step = -step
	}
	r.view.CurrentPage = clampPage(r.view.CurrentPage+step, r.PageCount())
}

// SetZoom sets the zoom scale, clamped to [MinZoom, MaxZoom].
func (r *Renderer) SetZoom(scale float64) {
	r.view.Zoom = clampZoom(scale)
}

// AdjustZoom steps the zoom scale up or down by one increment.
func (r *Renderer) AdjustZoom(dir int) {
	if dir > 0 {
		r.SetZoom(r.view.Zoom + ZoomStep)
	} else if dir < 0 {
		r.SetZoom(r.view.Zoom - ZoomStep)
	}
}

// SetSpread switches between single and dual page display.
func (r *Renderer) SetSpread(mode SpreadMode) {
	r.view.Spread = mode
}

// ToggleSpread flips between single and dual page display.
func (r *Renderer) ToggleSpread() {
	if r.view.Spread == SpreadDual {
		r.view.Spread = SpreadSingle
	} else {
		r.view.Spread = SpreadDual
	}
}

func clampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if total > 0 && page > total {
		return total
	}
	return page
}

func clampZoom(scale float64) float64 {
	if scale < MinZoom {
		return MinZoom
	}
	if scale > MaxZoom {
		return MaxZoom
	}
	return scale
}
