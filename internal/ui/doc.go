// Package ui implements the interactive reader using bubbletea's Elm architecture.
//
// The TUI provides a multi-view reading workflow:
//  1. [SpreadView] : The open document, one or two pages of extracted text
//  2. [NotesListView] : Browse the notes saved for the current book
//  3. [NoteEditView] : Edit the free-text note attached to the current page
//  4. [GoToView] : Jump to a page by number
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern,
// receiving messages via the Msg union type. Page turns and note keystrokes
// are pushed to the backend through the debounced synchronizers, so the UI
// never blocks on the network. A session logout event quits the reader.
//
// Keyboard navigation uses vim-style bindings (h/l, j/k, g, n, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help. Mouse support
// covers drag page-turns and modifier+wheel zoom.
package ui
