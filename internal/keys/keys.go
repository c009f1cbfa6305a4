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

	// Help toggle
	Help key.Binding

	// Task actions
	New      key.Binding
	Edit     key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Comments key.Binding

	// Filters and sort
	CyclePriority key.Binding
	CycleTag      key.Binding
	CycleDue      key.Binding
	CycleSort     key.Binding
	ToggleDone    key.Binding

	// Screens
	Tags   key.Binding
	Logout key.Binding
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
			key.WithHelp("enter", "open task"),
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
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		Comments: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comments"),
		),
		CyclePriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "filter priority"),
		),
		CycleTag: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter tag"),
		),
		CycleDue: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "filter due"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
		ToggleDone: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hide done"),
		),
		Tags: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "manage tags"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.New, k.Toggle, k.Delete, k.Search,
		k.Tags, k.Help, k.Quit,
	}
}

// Section is a titled group of bindings in the help view.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Sections groups the bindings the way the help view lists them.
func (k *KeyMap) Sections() []Section {
	return []Section{
		{Title: "Navigate", Bindings: []key.Binding{k.Up, k.Down, k.Select, k.Back}},
		{Title: "Tasks", Bindings: []key.Binding{k.New, k.Edit, k.Toggle, k.Delete, k.Comments}},
		{Title: "Reorder", Bindings: []key.Binding{k.MoveUp, k.MoveDown}},
		{Title: "Filter & sort", Bindings: []key.Binding{k.Search, k.CyclePriority, k.CycleTag, k.CycleDue, k.ToggleDone, k.CycleSort}},
		{Title: "Session", Bindings: []key.Binding{k.Tags, k.Logout, k.Help, k.Quit}},
	}
}

// FullHelp returns all keybindings grouped by section.
func (k *KeyMap) FullHelp() [][]key.Binding {
	sections := k.Sections()
	groups := make([][]key.Binding, len(sections))
	for i, s := range sections {
		groups[i] = s.Bindings
	}
	return groups
}
