// package reader owns the loaded document handle: pagination, raster
// rendering of one- and two-page spreads at a zoom scale, and the
// navigation primitives the UI layer drives.
package reader

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Document is a parsed, paginated document. Pages are 1-based.
type Document interface {
	PageCount() int
	Render(page int, scale float64) (image.Image, error)
	Text(page int) (string, error)
	Close() error
}

// baseDPI is the render resolution at zoom scale 1.0.
const baseDPI = 96.0

// FitzDocument adapts a MuPDF document handle to [Document].
type FitzDocument struct {
	doc *fitz.Document
}

// OpenFile parses the document at path.
func OpenFile(path string) (*FitzDocument, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &FitzDocument{doc: doc}, nil
}

func (d *FitzDocument) PageCount() int {
	return d.doc.NumPage()
}

// Render rasterizes a page at the given zoom scale. go-fitz pages are
// 0-based; callers use 1-based numbering throughout.
func (d *FitzDocument) Render(page int, scale float64) (image.Image, error) {
	img, err := d.doc.ImageDPI(page-1, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}

func (d *FitzDocument) Text(page int) (string, error) {
	text, err := d.doc.Text(page - 1)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", page, err)
	}
	return text, nil
}

func (d *FitzDocument) Close() error {
	return d.doc.Close()
}
