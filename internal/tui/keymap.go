package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// KeyMap defines the browser shortcuts. Navigation is handled by the table,
// so its bindings are only kept here for the help view.
type KeyMap struct {
	Table table.KeyMap

	NextFilter  key.Binding
	PrevFilter  key.Binding
	ClearFilter key.Binding
	AbuseOnly   key.Binding

	ToggleDetail key.Binding
	ToggleHelp   key.Binding

	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Table: table.DefaultKeyMap(),

		NextFilter: key.NewBinding(
			key.WithKeys("f", "tab"),
			key.WithHelp("f/Tab", "next archetype"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("F", "shift+tab"),
			key.WithHelp("F/Shift+Tab", "previous archetype"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all records"),
		),
		AbuseOnly: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "abuse only"),
		),

		ToggleDetail: key.NewBinding(
			key.WithKeys("enter", "d"),
			key.WithHelp("Enter/d", "toggle detail"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),

		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q/Esc", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleHelp, k.NextFilter, k.ToggleDetail, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Table.LineUp, k.Table.LineDown, k.Table.PageUp, k.Table.PageDown},
		{k.Table.GotoTop, k.Table.GotoBottom},
		{k.NextFilter, k.PrevFilter, k.ClearFilter, k.AbuseOnly},
		{k.ToggleDetail, k.ToggleHelp, k.Quit},
	}
}
