package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/djsadd/elibrary/internal/shared"
	"github.com/djsadd/elibrary/internal/source"
	"github.com/urfave/cli/v3"
)

// CatalogShow prints catalog metadata for a single book.
func (r *Runner) CatalogShow(ctx context.Context, cmd *cli.Command) error {
	bookID := cmd.StringArg("id")
	if bookID == "" {
		return fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}

	book, err := r.api.GetBook(ctx, bookID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(book, cmd.Bool("pretty"))
	}

	r.writePlainHeader(book.Title)
	if len(book.Authors) > 0 {
		r.writePlain("Authors: %s\n", strings.Join(book.Authors, ", "))
	}
	if book.Year != "" {
		r.writePlain("Year: %s\n", book.Year)
	}
	if book.Lang != "" {
		r.writePlain("Language: %s\n", book.Lang)
	}
	if book.PubInfo != "" {
		r.writePlain("Published: %s\n", book.PubInfo)
	}
	if len(book.Subjects) > 0 {
		r.writePlain("Subjects: %s\n", strings.Join(book.Subjects, ", "))
	}
	if book.Summary != "" {
		r.writePlainln("%s", book.Summary)
	}

	return nil
}

// CatalogDownload fetches a book's document to a local file, walking the
// same candidate chain the reader uses.
func (r *Runner) CatalogDownload(ctx context.Context, cmd *cli.Command) error {
	bookID := cmd.StringArg("id")
	if bookID == "" {
		return fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = fmt.Sprintf("%s.pdf", bookID)
	}

	ref := source.BookRef{BookID: bookID}
	if book, err := r.api.GetBook(ctx, bookID); err == nil {
		ref.RemoteURL = book.DownloadURL
	} else {
		r.logger.Warnf("failed to fetch book metadata: %v", err)
	}

	cand, err := r.locate(ctx, ref, outputPath)
	if err != nil {
		return err
	}

	r.logger.Infof("downloaded via %v", cand.Provenance)
	return r.writePlain("✓ Saved to %s\n", outputPath)
}

// locate walks the candidate chain and copies the winning document to
// outputPath.
func (r *Runner) locate(ctx context.Context, ref source.BookRef, outputPath string) (*source.Candidate, error) {
	return r.resolver.Locate(ctx, ref, func(path string, cand source.Candidate) error {
		src, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open downloaded document: %w", err)
		}
		defer src.Close()

		dst, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	})
}
