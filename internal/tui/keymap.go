package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Thresholds
	SupportDown    key.Binding
	SupportUp      key.Binding
	ConfidenceDown key.Binding
	ConfidenceUp   key.Binding

	// View
	NextPane key.Binding
	Up       key.Binding
	Down     key.Binding

	// Application
	Rerun key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		SupportDown: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "support -"),
		),
		SupportUp: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "support +"),
		),
		ConfidenceDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "confidence -"),
		),
		ConfidenceUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "confidence +"),
		),

		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next pane"),
		),
		// Up and Down are handled by the rule table; listed for help only.
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),

		Rerun: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "re-run"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/Esc", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SupportDown, k.SupportUp, k.ConfidenceDown, k.ConfidenceUp, k.NextPane, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SupportDown, k.SupportUp, k.ConfidenceDown, k.ConfidenceUp},
		{k.NextPane, k.Up, k.Down},
		{k.Rerun, k.Help, k.Quit},
	}
}
