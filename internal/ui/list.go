package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/djsadd/elibrary/internal/models"
)

var (
	_ list.Item = noteItem{}
)

// noteItem wraps [models.Note] to implement [list.Item].
type noteItem struct {
	note models.Note
}

func (i noteItem) FilterValue() string { return i.note.Text }
func (i noteItem) Title() string       { return fmt.Sprintf("Page %d", i.note.Page) }
func (i noteItem) Description() string {
	text := strings.Join(strings.Fields(i.note.Text), " ")
	if len(text) > 80 {
		text = text[:77] + "..."
	}
	return text
}
