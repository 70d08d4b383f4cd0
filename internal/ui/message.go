package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSpreadLoaded MsgKind = iota
	MsgSessionLost
)

// spreadLoadedMsg is the constructor for [MsgSpreadLoaded]
func spreadLoadedMsg(primary, secondary string, err error) Msg {
	return Msg{
		kind: MsgSpreadLoaded,
		data: struct {
			primary   string
			secondary string
			err       error
		}{primary, secondary, err},
	}
}

// sessionLostMsg is the constructor for [MsgSessionLost]
func sessionLostMsg() Msg {
	return Msg{kind: MsgSessionLost}
}
