package main

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	SelectPrevMessage key.Binding
	SelectNextMessage key.Binding
	UnfocusMessage    key.Binding
	FocusMessage      key.Binding
	SubmitMessage     key.Binding
	EditMessage       key.Binding
	NewSession        key.Binding
	NextSession       key.Binding
	PrevSession       key.Binding
	ToggleSidebar     key.Binding
	DismissError      key.Binding
	Quit              key.Binding
}

var DefaultKeyMap = KeyMap{
	SelectPrevMessage: key.NewBinding(key.WithKeys("up"), key.WithHelp("up", "previous message")),
	SelectNextMessage: key.NewBinding(key.WithKeys("down"), key.WithHelp("down", "next message")),
	UnfocusMessage:    key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "browse messages")),
	FocusMessage:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "compose")),
	SubmitMessage:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "send")),
	EditMessage:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit message")),
	NewSession:        key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
	NextSession:       key.NewBinding(key.WithKeys("ctrl+right"), key.WithHelp("ctrl+right", "next chat")),
	PrevSession:       key.NewBinding(key.WithKeys("ctrl+left"), key.WithHelp("ctrl+left", "previous chat")),
	ToggleSidebar:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "toggle sidebar")),
	DismissError:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss error")),
	Quit:              key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SubmitMessage, k.UnfocusMessage, k.NewSession, k.NextSession, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.FocusMessage, k.UnfocusMessage, k.SubmitMessage, k.EditMessage},
		{k.SelectPrevMessage, k.SelectNextMessage},
		{k.NewSession, k.NextSession, k.PrevSession, k.ToggleSidebar},
		{k.DismissError, k.Quit},
	}
}
