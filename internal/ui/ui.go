package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/djsadd/elibrary/internal/models"
	"github.com/djsadd/elibrary/internal/reader"
	"github.com/djsadd/elibrary/internal/session"
	"github.com/djsadd/elibrary/internal/syncer"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SpreadView ViewState = iota
	NotesListView
	NoteEditView
	GoToView
)

// Model represents the reader application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	book     *models.Book
	renderer *reader.Renderer
	progress *syncer.Progress
	notes    *syncer.Notes
	events   <-chan session.Event

	gesture   reader.Gesture
	viewport  viewport.Model
	noteList  list.Model
	noteInput textarea.Model
	pageInput textinput.Model
	help      help.Model
	keys      keyMap

	width      int
	height     int
	altScreen  bool
	primary    string
	secondary  string
	err        error
	authLost   bool
	sizedLists bool
}

// NewModel creates a new reader model with the provided dependencies. The
// renderer must already hold an open document positioned on the start page.
func NewModel(ctx context.Context, book *models.Book, renderer *reader.Renderer, progress *syncer.Progress, notes *syncer.Notes, sess *session.Store) *Model {
	input := textinput.New()
	input.Placeholder = "page number"
	input.CharLimit = 6

	note := textarea.New()
	note.Placeholder = "Write a note for this page..."
	note.ShowLineNumbers = false

	m := &Model{
		ctx:       ctx,
		view:      SpreadView,
		book:      book,
		renderer:  renderer,
		progress:  progress,
		notes:     notes,
		noteInput: note,
		pageInput: input,
		help:      help.New(),
		keys:      newKeyMap(),
		altScreen: true,
	}
	if sess != nil {
		m.events = sess.Subscribe()
	}
	return m
}

// Init loads the first spread and begins watching for session loss.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadSpread(), m.watchSession())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width-4, msg.Height-6)
		m.viewport.SetContent(m.spreadContent())
		m.noteInput.SetWidth(msg.Width - 8)
		m.noteInput.SetHeight(6)
		if m.sizedLists {
			m.noteList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SpreadView:
			return m.handleSpreadKeys(msg)
		case NotesListView:
			return m.handleNotesListKeys(msg)
		case NoteEditView:
			return m.handleNoteEditKeys(msg)
		case GoToView:
			return m.handleGoToKeys(msg)
		}

	case tea.MouseMsg:
		if m.view == SpreadView {
			return m.handleMouse(msg)
		}

	case Msg:
		return m.handleAppMsg(msg)
	}

	return m, nil
}

func (m *Model) handleAppMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSpreadLoaded:
		data := msg.data.(struct {
			primary   string
			secondary string
			err       error
		})
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.primary = data.primary
		m.secondary = data.secondary
		m.viewport.SetContent(m.spreadContent())
		m.viewport.GotoTop()
		return m, nil

	case MsgSessionLost:
		m.authLost = true
		return m, m.quit()
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.authLost {
		return styles.err.Render("Session ended. Sign in again to keep reading.")
	}

	switch m.view {
	case SpreadView:
		return m.renderSpread()
	case NotesListView:
		return m.renderNotesList()
	case NoteEditView:
		return m.renderNoteEdit()
	case GoToView:
		return m.renderGoTo()
	default:
		return ""
	}
}

func (m *Model) handleSpreadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q", msg.String() == "ctrl+c":
		return m, m.quit()
	case msg.String() == "left", msg.String() == "h", msg.String() == "pgup":
		return m.turn(-1)
	case msg.String() == "right", msg.String() == "l", msg.String() == "pgdown":
		return m.turn(1)
	case msg.String() == "home":
		m.renderer.GoTo(1)
		return m.pageMoved()
	case msg.String() == "end":
		m.renderer.GoTo(m.renderer.PageCount())
		return m.pageMoved()
	case msg.String() == "+", msg.String() == "=":
		m.renderer.AdjustZoom(1)
		return m, m.loadSpread()
	case msg.String() == "-":
		m.renderer.AdjustZoom(-1)
		return m, m.loadSpread()
	case msg.String() == "s":
		m.renderer.ToggleSpread()
		return m, m.loadSpread()
	case msg.String() == "g":
		m.pageInput.SetValue("")
		m.pageInput.Focus()
		m.view = GoToView
		return m, textinput.Blink
	case msg.String() == "n":
		page := m.renderer.View().CurrentPage
		m.noteInput.SetValue(m.notes.Draft(page))
		m.noteInput.Focus()
		m.view = NoteEditView
		return m, textarea.Blink
	case msg.String() == "N":
		m.buildNoteList()
		m.view = NotesListView
		return m, nil
	case msg.String() == "f":
		m.altScreen = !m.altScreen
		if m.altScreen {
			return m, tea.EnterAltScreen
		}
		return m, tea.ExitAltScreen
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleNotesListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, m.quit()
	case "esc":
		m.view = SpreadView
		return m, nil
	case "enter":
		if item, ok := m.noteList.SelectedItem().(noteItem); ok {
			m.renderer.GoTo(item.note.Page)
			m.view = SpreadView
			return m.pageMoved()
		}
	}

	var cmd tea.Cmd
	m.noteList, cmd = m.noteList.Update(msg)
	return m, cmd
}

func (m *Model) handleNoteEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.noteInput.Blur()
		m.notes.Flush()
		m.view = SpreadView
		return m, nil
	case "ctrl+c":
		return m, m.quit()
	}

	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	m.notes.Edit(m.ctx, m.renderer.View().CurrentPage, m.noteInput.Value())
	return m, cmd
}

func (m *Model) handleGoToKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pageInput.Blur()
		m.view = SpreadView
		return m, nil
	case "ctrl+c":
		return m, m.quit()
	case "enter":
		var page int
		if _, err := fmt.Sscanf(m.pageInput.Value(), "%d", &page); err == nil {
			m.renderer.GoTo(page)
		}
		m.pageInput.Blur()
		m.view = SpreadView
		return m.pageMoved()
	}

	var cmd tea.Cmd
	m.pageInput, cmd = m.pageInput.Update(msg)
	return m, cmd
}

// handleMouse turns drags into spread navigation and modifier+wheel into
// zoom. A wheel without the modifier scrolls the spread text.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		delta := 1.0
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1.0
		}
		if next, ok := reader.WheelZoom(delta, msg.Ctrl, m.renderer.View().Zoom); ok {
			m.renderer.SetZoom(next)
			return m, m.loadSpread()
		}

	case tea.MouseButtonLeft:
		switch msg.Action {
		case tea.MouseActionPress:
			m.gesture.PointerDown(float64(msg.X))
			return m, nil
		case tea.MouseActionRelease:
			switch m.gesture.PointerUp(float64(msg.X)) {
			case reader.IntentPrevSpread:
				return m.turn(-1)
			case reader.IntentNextSpread:
				return m.turn(1)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) turn(dir int) (tea.Model, tea.Cmd) {
	before := m.renderer.View().CurrentPage
	m.renderer.Advance(dir)
	if m.renderer.View().CurrentPage == before {
		return m, nil
	}
	return m.pageMoved()
}

func (m *Model) pageMoved() (tea.Model, tea.Cmd) {
	m.progress.PageChanged(m.ctx, m.renderer.View().CurrentPage)
	return m, m.loadSpread()
}

func (m *Model) quit() tea.Cmd {
	m.progress.Flush()
	m.notes.Flush()
	return tea.Quit
}

func (m *Model) buildNoteList() {
	notes := m.notes.All()
	items := make([]list.Item, len(notes))
	for i, note := range notes {
		items[i] = noteItem{note: note}
	}
	m.noteList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.noteList.Title = fmt.Sprintf("Notes in '%s'", m.book.Title)
	m.sizedLists = true
}

func (m *Model) loadSpread() tea.Cmd {
	return func() tea.Msg {
		primary, secondary, err := m.renderer.SpreadText()
		return spreadLoadedMsg(primary, secondary, err)
	}
}

func (m *Model) watchSession() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		for ev := range m.events {
			if ev == session.EventLogout {
				return sessionLostMsg()
			}
		}
		return nil
	}
}

func (m *Model) spreadContent() string {
	if m.secondary == "" {
		return styles.page.Render(m.primary)
	}
	half := (m.width - 8) / 2
	left := styles.page.Width(half).Render(m.primary)
	right := styles.page.Width(half).Render(m.secondary)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *Model) renderSpread() string {
	title := styles.title.Render(m.book.Title)

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Error: %v", m.err))
		return fmt.Sprintf("%s\n%s\n\n%s", title, body, m.help.View(m.keys))
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, m.viewport.View(), m.statusLine(), m.help.View(m.keys))
}

func (m *Model) renderNotesList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.noteList.View(), helpView)
}

func (m *Model) renderNoteEdit() string {
	page := m.renderer.View().CurrentPage
	title := styles.title.Render(fmt.Sprintf("Note for page %d", page))
	return fmt.Sprintf("%s\n%s\n\n%s %s", title, m.noteInput.View(), m.saveIndicator(), styles.help.Render("esc to close"))
}

func (m *Model) renderGoTo() string {
	title := styles.title.Render(fmt.Sprintf("Go to page (1-%d)", m.renderer.PageCount()))
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.pageInput.View(), styles.help.Render("enter to jump, esc to cancel"))
}

func (m *Model) statusLine() string {
	view := m.renderer.View()
	mode := "dual"
	if view.Spread == reader.SpreadSingle {
		mode = "single"
	}
	pos := fmt.Sprintf("page %d/%d · %s · %.0f%%", view.CurrentPage, m.renderer.PageCount(), mode, view.Zoom*100)
	return styles.help.Render(pos) + "  " + m.saveIndicator()
}

func (m *Model) saveIndicator() string {
	switch m.notes.State() {
	case syncer.SavePending:
		return styles.warn.Render("saving…")
	case syncer.SaveDone:
		return styles.ok.Render("saved")
	case syncer.SaveFailed:
		return styles.err.Render("save failed")
	default:
		return ""
	}
}
