package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Submit    key.Binding
	Interrupt key.Binding
	Clear     key.Binding
}

var Keys = KeyMap{
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run command")),
	Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "exit with summary")),
	Clear:     key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear input")),
}
