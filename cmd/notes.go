package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/djsadd/elibrary/internal/shared"
	"github.com/urfave/cli/v3"
)

// NotesList prints all notes for a book, ordered as the backend returns
// them.
func (r *Runner) NotesList(ctx context.Context, cmd *cli.Command) error {
	bookID := cmd.StringArg("book")
	if bookID == "" {
		return fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}

	notes, err := r.api.ListNotes(ctx, bookID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(notes, true)
	}

	if len(notes) == 0 {
		return r.writePlain("No notes for this book\n")
	}

	r.writePlainHeader(fmt.Sprintf("Notes for %s", bookID))
	for _, note := range notes {
		text := strings.TrimSpace(note.Text)
		r.writePlain("page %d: %s\n", note.Page, text)
	}
	return nil
}
