package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/djsadd/elibrary/internal/models"
	"github.com/djsadd/elibrary/internal/reader"
	"github.com/djsadd/elibrary/internal/shared"
	"github.com/djsadd/elibrary/internal/source"
	"github.com/djsadd/elibrary/internal/syncer"
	"github.com/djsadd/elibrary/internal/ui"
	"github.com/urfave/cli/v3"
)

// Read opens a book in the interactive terminal reader. The saved reading
// position is restored unless --page names one explicitly.
func (r *Runner) Read(ctx context.Context, cmd *cli.Command) error {
	bookID := cmd.StringArg("id")
	explicit := cmd.String("source")
	if bookID == "" && explicit == "" {
		return fmt.Errorf("%w: book id or --source", shared.ErrMissingArgument)
	}

	book := r.lookupBook(ctx, bookID, explicit)

	// Redirect logs to file before anything that logs mid-session is
	// built, so sync warnings never write to the terminal the TUI owns.
	fileLogger, err := shared.NewFileLogger("./tmp/elib-reader.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	renderer := reader.NewRenderer(r.logger)
	defer renderer.Close()
	if cmd.Bool("single") {
		renderer.SetSpread(reader.SpreadSingle)
	}

	cand, err := r.openDocument(ctx, renderer, source.BookRef{
		BookID:      bookID,
		ExplicitURL: explicit,
		RemoteURL:   book.DownloadURL,
	})
	if err != nil {
		return err
	}
	r.logger.Infof("opened document via %v", cand.Provenance)

	progress := syncer.NewProgress(r.api, r.snapshotCache(), r.logger, r.config.Reader.ProgressInterval())
	defer progress.Close()

	notes := syncer.NewNotes(r.api, r.logger, r.config.Reader.NotesInterval())
	defer notes.Close()

	if bookID != "" {
		start := progress.Enter(ctx, bookID, renderer.PageCount(), cmd.Int("page"))
		renderer.GoTo(start)
		if err := notes.Enter(ctx, bookID); err != nil {
			r.logger.Warnf("notes unavailable: %v", err)
		}
	} else if page := cmd.Int("page"); page > 0 {
		renderer.GoTo(page)
	}

	model := ui.NewModel(ctx, book, renderer, progress, notes, r.session)

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !cmd.Bool("no-alt-screen") {
		opts = append(opts, tea.WithAltScreen())
	}

	p := tea.NewProgram(model, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running reader: %w", err)
	}

	progress.Flush()
	notes.Flush()
	return nil
}

// ReadExport renders a page range to PNG files, one file per page.
func (r *Runner) ReadExport(ctx context.Context, cmd *cli.Command) error {
	bookID := cmd.StringArg("id")
	explicit := cmd.String("source")
	if bookID == "" && explicit == "" {
		return fmt.Errorf("%w: book id or --source", shared.ErrMissingArgument)
	}

	first := cmd.Int("page")
	last := cmd.Int("to")
	if last == 0 {
		last = first
	}
	zoom := cmd.Float("zoom")
	if zoom < reader.MinZoom || zoom > reader.MaxZoom {
		return fmt.Errorf("%w: zoom must be between %.1f and %.1f", shared.ErrInvalidFlag, reader.MinZoom, reader.MaxZoom)
	}

	book := r.lookupBook(ctx, bookID, explicit)

	renderer := reader.NewRenderer(r.logger)
	defer renderer.Close()

	if _, err := r.openDocument(ctx, renderer, source.BookRef{
		BookID:      bookID,
		ExplicitURL: explicit,
		RemoteURL:   book.DownloadURL,
	}); err != nil {
		return err
	}

	if first < 1 || first > renderer.PageCount() {
		return fmt.Errorf("%w: page %d out of range 1-%d", shared.ErrInvalidFlag, first, renderer.PageCount())
	}
	if last < first || last > renderer.PageCount() {
		return fmt.Errorf("%w: --to %d out of range %d-%d", shared.ErrInvalidFlag, last, first, renderer.PageCount())
	}

	renderer.SetSpread(reader.SpreadSingle)
	renderer.SetZoom(zoom)

	base := bookID
	if base == "" {
		base = filepath.Base(explicit)
	}

	for page := first; page <= last; page++ {
		renderer.GoTo(page)

		spread, err := renderer.RenderSpread()
		if err != nil {
			return fmt.Errorf("failed to render page %d: %w", page, err)
		}

		outputPath := cmd.String("output")
		if outputPath == "" || last > first {
			outputPath = fmt.Sprintf("%s-page%d.png", base, page)
		}

		if err := writePNG(outputPath, spread.Primary); err != nil {
			return err
		}
		if err := r.writePlain("✓ Exported page %d to %s\n", page, outputPath); err != nil {
			return err
		}
	}

	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// lookupBook fetches metadata, degrading to a bare record when the
// catalog is unreachable and a source override exists.
func (r *Runner) lookupBook(ctx context.Context, bookID, explicit string) *models.Book {
	book := &models.Book{ID: bookID, Title: bookID}
	if book.Title == "" {
		book.Title = filepath.Base(explicit)
	}

	if bookID == "" {
		return book
	}

	fetched, err := r.api.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, shared.ErrBookNotFound) && explicit == "" {
			r.logger.Warnf("book %s not found in catalog", bookID)
		} else {
			r.logger.Warnf("failed to fetch book metadata: %v", err)
		}
		return book
	}
	if fetched.Title == "" {
		fetched.Title = bookID
	}
	return fetched
}

func (r *Runner) openDocument(ctx context.Context, renderer *reader.Renderer, ref source.BookRef) (*source.Candidate, error) {
	return r.resolver.Locate(ctx, ref, func(path string, cand source.Candidate) error {
		return renderer.OpenPath(path, string(cand.Provenance))
	})
}

func (r *Runner) snapshotCache() syncer.SnapshotCache {
	if r.snapshots == nil {
		return nil
	}
	return r.snapshots
}
