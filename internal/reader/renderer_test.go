package reader

import (
	"errors"
	"fmt"
	"image"
	"testing"
)

// fakeDoc is an in-memory [Document] for exercising navigation without a
// real parser.
type fakeDoc struct {
	pages    int
	closed   bool
	rendered []int
}

func (d *fakeDoc) PageCount() int { return d.pages }

func (d *fakeDoc) Render(page int, scale float64) (image.Image, error) {
	if page < 1 || page > d.pages {
		return nil, errors.New("page out of range")
	}
	d.rendered = append(d.rendered, page)
	return image.NewRGBA(image.Rect(0, 0, int(100*scale), int(140*scale))), nil
}

func (d *fakeDoc) Text(page int) (string, error) {
	if page < 1 || page > d.pages {
		return "", errors.New("page out of range")
	}
	return fmt.Sprintf("text of page %d", page), nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func TestRenderer(t *testing.T) {
	t.Run("Open", func(t *testing.T) {
		t.Run("Adopts Document And Becomes Ready", func(t *testing.T) {
			r := NewRenderer(nil)
			if r.State() != StateEmpty {
				t.Fatalf("expected empty state, got %d", r.State())
			}

			if err := r.Open(&fakeDoc{pages: 10}, "api-stream"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if r.State() != StateReady {
				t.Errorf("expected ready state, got %d", r.State())
			}
			if r.PageCount() != 10 {
				t.Errorf("expected 10 pages, got %d", r.PageCount())
			}
		})

		t.Run("Rejects Empty Document", func(t *testing.T) {
			r := NewRenderer(nil)
			doc := &fakeDoc{pages: 0}

			if err := r.Open(doc, "api-stream"); err == nil {
				t.Error("expected error for empty document")
			}
			if !doc.closed {
				t.Error("expected rejected document to be closed")
			}
		})

		t.Run("Closes Previous Document", func(t *testing.T) {
			r := NewRenderer(nil)
			first := &fakeDoc{pages: 5}
			r.Open(first, "api-stream")

			r.Open(&fakeDoc{pages: 8}, "api-download")
			if !first.closed {
				t.Error("expected previous document to be closed")
			}
			if r.PageCount() != 8 {
				t.Errorf("expected new document to be active, got %d pages", r.PageCount())
			}
		})
	})

	t.Run("Close Returns To Empty", func(t *testing.T) {
		r := NewRenderer(nil)
		doc := &fakeDoc{pages: 5}
		r.Open(doc, "api-stream")

		r.Close()
		if r.State() != StateEmpty {
			t.Errorf("expected empty state, got %d", r.State())
		}
		if !doc.closed {
			t.Error("expected document handle to be released")
		}
	})

	t.Run("RenderSpread", func(t *testing.T) {
		t.Run("Dual Mode Renders Two Pages", func(t *testing.T) {
			r := NewRenderer(nil)
			doc := &fakeDoc{pages: 10}
			r.Open(doc, "api-stream")
			r.GoTo(3)

			spread, err := r.RenderSpread()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if spread.Primary == nil || spread.Secondary == nil {
				t.Error("expected both surfaces in dual mode")
			}
			if len(doc.rendered) != 2 || doc.rendered[0] != 3 || doc.rendered[1] != 4 {
				t.Errorf("expected pages 3 and 4 rendered, got %v", doc.rendered)
			}
		})

		t.Run("Single Mode Leaves Secondary Nil", func(t *testing.T) {
			r := NewRenderer(nil)
			r.Open(&fakeDoc{pages: 10}, "api-stream")
			r.SetSpread(SpreadSingle)

			spread, err := r.RenderSpread()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if spread.Secondary != nil {
				t.Error("expected nil secondary in single mode")
			}
		})

		t.Run("Last Page Has No Secondary", func(t *testing.T) {
			r := NewRenderer(nil)
			r.Open(&fakeDoc{pages: 10}, "api-stream")
			r.GoTo(10)

			spread, err := r.RenderSpread()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if spread.Secondary != nil {
				t.Error("expected nil secondary past the last page")
			}
		})

		t.Run("No Document Is An Error", func(t *testing.T) {
			r := NewRenderer(nil)
			if _, err := r.RenderSpread(); err == nil {
				t.Error("expected error without a document")
			}
		})
	})

	t.Run("SpreadText Pairs Pages In Dual Mode", func(t *testing.T) {
		r := NewRenderer(nil)
		r.Open(&fakeDoc{pages: 10}, "api-stream")
		r.GoTo(3)

		primary, secondary, err := r.SpreadText()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if primary != "text of page 3" || secondary != "text of page 4" {
			t.Errorf("unexpected spread text: %q, %q", primary, secondary)
		}
	})

	t.Run("Navigation", func(t *testing.T) {
		t.Run("GoTo Clamps To Bounds", func(t *testing.T) {
			r := NewRenderer(nil)
			r.Open(&fakeDoc{pages: 10}, "api-stream")

			r.GoTo(0)
			if r.View().CurrentPage != 1 {
				t.Errorf("expected clamp to 1, got %d", r.View().CurrentPage)
			}

			r.GoTo(99)
			if r.View().CurrentPage != 10 {
				t.Errorf("expected clamp to 10, got %d", r.View().CurrentPage)
			}
		})

		t.Run("Advance Steps Two In Dual Mode", func(t *testing.T) {
			r := NewRenderer(nil)
			r.Open(&fakeDoc{pages: 10}, "api-stream")

			r.Advance(1)
			if r.View().CurrentPage != 3 {
				t.Errorf("expected page 3, got %d", r.View().CurrentPage)
			}
			r.Advance(-1)
			if r.View().CurrentPage != 1 {
				t.Errorf("expected page 1, got %d", r.View().CurrentPage)
			}
		})

		t.Run("Advance Steps One In Single Mode", func(t *testing.T) {
			r := NewRenderer(nil)
			r.Open(&fakeDoc{pages: 10}, "api-stream")
			r.SetSpread(SpreadSingle)

			r.Advance(1)
			if r.View().CurrentPage != 2 {
				t.Errorf("expected page 2, got %d", r.View().CurrentPage)
			}
		})

		t.Run("Advance Clamps At Both Ends", func(t *testing.T) {
			r := NewRenderer(nil)
			r.Open(&fakeDoc{pages: 3}, "api-stream")

			r.Advance(-1)
			if r.View().CurrentPage != 1 {
				t.Errorf("expected clamp at first page, got %d", r.View().CurrentPage)
			}

			r.GoTo(3)
			r.Advance(1)
			if r.View().CurrentPage != 3 {
				t.Errorf("expected clamp at last page, got %d", r.View().CurrentPage)
			}
		})
	})

	t.Run("Zoom", func(t *testing.T) {
		t.Run("SetZoom Clamps To Range", func(t *testing.T) {
			r := NewRenderer(nil)

			r.SetZoom(0.1)
			if r.View().Zoom != MinZoom {
				t.Errorf("expected min zoom, got %f", r.View().Zoom)
			}

			r.SetZoom(9.0)
			if r.View().Zoom != MaxZoom {
				t.Errorf("expected max zoom, got %f", r.View().Zoom)
			}
		})

		t.Run("AdjustZoom Steps By Increment", func(t *testing.T) {
			r := NewRenderer(nil)

			r.AdjustZoom(1)
			if got := r.View().Zoom; got < 1.09 || got > 1.11 {
				t.Errorf("expected zoom near 1.1, got %f", got)
			}

			r.AdjustZoom(-1)
			r.AdjustZoom(-1)
			if got := r.View().Zoom; got < 0.89 || got > 0.91 {
				t.Errorf("expected zoom near 0.9, got %f", got)
			}
		})
	})

	t.Run("ToggleSpread Flips Modes", func(t *testing.T) {
		r := NewRenderer(nil)
		if r.View().Spread != SpreadDual {
			t.Fatal("expected dual mode by default")
		}
		r.ToggleSpread()
		if r.View().Spread != SpreadSingle {
			t.Error("expected single after toggle")
		}
		r.ToggleSpread()
		if r.View().Spread != SpreadDual {
			t.Error("expected dual after second toggle")
		}
	})
}
