package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the reader TUI.
type keyMap struct {
	prev       key.Binding
	next       key.Binding
	firstPage  key.Binding
	lastPage   key.Binding
	gotoPage   key.Binding
	zoomIn     key.Binding
	zoomOut    key.Binding
	spread     key.Binding
	note       key.Binding
	notes      key.Binding
	fullscreen key.Binding
	back       key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		prev:       key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev spread")),
		next:       key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next spread")),
		firstPage:  key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first page")),
		lastPage:   key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last page")),
		gotoPage:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to page")),
		zoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		spread:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "single/dual")),
		note:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "edit note")),
		notes:      key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "all notes")),
		fullscreen: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.prev, k.next, k.note, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.prev, k.next, k.firstPage, k.lastPage},
		{k.gotoPage, k.zoomIn, k.zoomOut, k.spread},
		{k.note, k.notes, k.fullscreen, k.quit},
	}
}
