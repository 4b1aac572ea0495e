package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	SwitchPane key.Binding
	Edit       key.Binding
	Click      key.Binding
	AddSlot    key.Binding
	RemoveSlot key.Binding
	CopyPaste  key.Binding
	RowSelect  key.Binding
	Diff       key.Binding
	Save       key.Binding
	Reload     key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	SwitchPane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter", "e"),
		key.WithHelp("enter", "edit"),
	),
	Click: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "select"),
	),
	AddSlot: key.NewBinding(
		key.WithKeys("a", "+"),
		key.WithHelp("a", "add slot"),
	),
	RemoveSlot: key.NewBinding(
		key.WithKeys("x", "-"),
		key.WithHelp("x", "remove slot"),
	),
	CopyPaste: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy/paste mode"),
	),
	RowSelect: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "row select"),
	),
	Diff: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "changes"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s", "s"),
		key.WithHelp("s", "save"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r", "R"),
		key.WithHelp("R", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// shortHelp is the key list shown in the footer.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.SwitchPane, k.AddSlot, k.RemoveSlot, k.CopyPaste, k.Diff, k.Save, k.Reload, k.Quit}
}
