package sweep_tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Stop key.Binding
	Quit key.Binding
}

func NewKeyMap() KeyMap {
	return KeyMap{
		Stop: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "stop after the current point"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "stop now"),
		),
	}
}
