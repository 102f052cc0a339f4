package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Manual refresh and agent fetch
	Refresh    key.Binding
	AgentFetch key.Binding

	// Folder cycling
	NextFolder key.Binding
	PrevFolder key.Binding

	// Mail actions
	Archive    key.Binding
	Delete     key.Binding
	Snooze     key.Binding
	ToggleMark key.Binding
	Drafts     key.Binding
	Compose    key.Binding

	// Sort
	SortDate   key.Binding
	SortSender key.Binding

	// Sender profile panel
	Profile key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open email"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh folder"),
		),
		AgentFetch: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "agent fetch"),
		),
		NextFolder: key.NewBinding(
			key.WithKeys("tab", "]"),
			key.WithHelp("tab", "next folder"),
		),
		PrevFolder: key.NewBinding(
			key.WithKeys("shift+tab", "["),
			key.WithHelp("shift+tab", "prev folder"),
		),
		Archive: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Snooze: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "snooze 1d"),
		),
		ToggleMark: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "select for drafts"),
		),
		Drafts: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate drafts"),
		),
		Compose: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "compose"),
		),
		SortDate: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort by date"),
		),
		SortSender: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "sort by sender"),
		),
		Profile: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "sender profile"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.NextFolder, k.PrevFolder, k.Refresh, k.AgentFetch},
		{k.Archive, k.Delete, k.Snooze, k.ToggleMark, k.Drafts},
		{k.SortDate, k.SortSender, k.Profile, k.Compose, k.Help},
	}
}
