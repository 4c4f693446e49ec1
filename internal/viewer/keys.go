package viewer

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// NormalKeyMap holds the bindings active while browsing.
type NormalKeyMap struct {
	Quit        key.Binding
	Ascending   key.Binding
	Descending  key.Binding
	Restore     key.Binding
	Down        key.Binding
	Up          key.Binding
	PageDown    key.Binding
	PageUp      key.Binding
	Home        key.Binding
	Top         key.Binding
	End         key.Binding
	Right       key.Binding
	Left        key.Binding
	StartOfLine key.Binding
	EndOfLine   key.Binding
	Search      key.Binding
	Repeat      key.Binding
}

// CommandKeyMap holds the bindings active while a search is typed. Any
// other printable key is appended to the command line.
type CommandKeyMap struct {
	Quit   key.Binding
	Commit key.Binding
	Delete key.Binding
	Cancel key.Binding
}

// DefaultNormalKeyMap returns the browsing bindings.
func DefaultNormalKeyMap() NormalKeyMap {
	return NormalKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+q", "ctrl+x", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Ascending: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "sort ascending"),
		),
		Descending: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "sort descending"),
		),
		Restore: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "original order"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "first row"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "first row"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last row"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		StartOfLine: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "first column"),
		),
		EndOfLine: key.NewBinding(
			key.WithKeys("$"),
			key.WithHelp("$", "last column"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search column"),
		),
		Repeat: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "repeat search"),
		),
	}
}

// DefaultCommandKeyMap returns the search entry bindings.
func DefaultCommandKeyMap() CommandKeyMap {
	return CommandKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+x", "ctrl+c"),
			key.WithHelp("ctrl+x", "quit"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Delete: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("backspace", "delete"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k NormalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Right, k.Left, k.Search, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k NormalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.PageDown, k.PageUp, k.Home, k.Top, k.End},
		{k.Right, k.Left, k.StartOfLine, k.EndOfLine},
		{k.Ascending, k.Descending, k.Restore, k.Search, k.Repeat, k.Quit},
	}
}

// ShortHelp implements help.KeyMap.
func (k CommandKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Delete, k.Cancel, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k CommandKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Commit, k.Delete, k.Cancel, k.Quit}}
}

// KeyHelp renders the bindings of both modes for usage output.
func KeyHelp() string {
	h := help.New()
	title := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(title.Render("Keys:"))
	b.WriteString("\n")
	b.WriteString(h.FullHelpView(DefaultNormalKeyMap().FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(title.Render("While typing a search:"))
	b.WriteString("\n")
	b.WriteString(h.FullHelpView(DefaultCommandKeyMap().FullHelp()))
	b.WriteString("\n")
	return b.String()
}
