package main

import (
	"context"
	"fmt"

	"github.com/djsadd/elibrary/internal/models"
	"github.com/urfave/cli/v3"
)

// Shelf prints reading progress across books: the backend's records when
// reachable, the local snapshot cache otherwise.
func (r *Runner) Shelf(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("local") {
		return r.shelfLocal(cmd.Bool("json"))
	}

	records, err := r.api.ListUserBooks(ctx)
	if err != nil {
		r.logger.Warnf("backend unreachable, falling back to local cache: %v", err)
		return r.shelfLocal(cmd.Bool("json"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		return r.writePlain("No books in progress\n")
	}

	r.writePlainHeader("Shelf")
	for _, ub := range records {
		r.writePlain("%s\n", formatShelfRecord(ub.BookID, ub.CurrentPage, ub.TotalPages, ub.ProgressPercent, ub.Status))
	}
	return nil
}

func (r *Runner) shelfLocal(asJSON bool) error {
	if r.snapshots == nil {
		return fmt.Errorf("no local database, run 'elib setup database' first")
	}

	snaps, err := r.snapshots.List()
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(snaps, true)
	}

	if len(snaps) == 0 {
		return r.writePlain("No cached progress\n")
	}

	r.writePlainHeader("Shelf (local cache)")
	for _, snap := range snaps {
		r.writePlain("%s\n", formatShelfRecord(snap.BookID, snap.CurrentPage, snap.TotalPages, snap.ProgressPercent, snap.Status))
	}
	return nil
}

func formatShelfRecord(bookID string, page, total, percent int, status string) string {
	if total <= 0 {
		return fmt.Sprintf("%-24s %s", bookID, status)
	}
	if percent == 0 {
		percent = models.Percent(page, total)
	}
	return fmt.Sprintf("%-24s page %d/%d (%d%%) %s", bookID, page, total, percent, status)
}
