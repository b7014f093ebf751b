// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// FieldKeyMap defines the editing keys of a masked field.
// Printable runes and pastes are not bindings: they always insert.
type FieldKeyMap struct {
	// Caret movement
	Left  key.Binding
	Right key.Binding
	Home  key.Binding
	End   key.Binding

	// Selection
	SelectLeft  key.Binding
	SelectRight key.Binding
	SelectAll   key.Binding

	// Deletion
	Backspace key.Binding
	Delete    key.Binding
	Clear     key.Binding
}

// DefaultFieldKeyMap returns the default field bindings.
func DefaultFieldKeyMap() FieldKeyMap {
	return FieldKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "ctrl+b"),
			key.WithHelp("←", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "ctrl+f"),
			key.WithHelp("→", "move right"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "ctrl+a"),
			key.WithHelp("home", "start of value"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "ctrl+e"),
			key.WithHelp("end", "end of value"),
		),

		SelectLeft: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "select left"),
		),
		SelectRight: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "select right"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "select all"),
		),

		Backspace: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("⌫", "delete left"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "ctrl+d"),
			key.WithHelp("del", "delete right"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear field"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k FieldKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.SelectAll}
}

// FullHelp returns keybindings for the full help view.
func (k FieldKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Home, k.End},
		{k.SelectLeft, k.SelectRight, k.SelectAll},
		{k.Backspace, k.Delete, k.Clear},
	}
}

// FormKeyMap defines navigation between the fields of a form.
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding

	// Field is shown alongside the form bindings in the help footer.
	Field FieldKeyMap
}

// DefaultFormKeyMap returns the default form bindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next / submit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
		Field: DefaultFieldKeyMap(),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Field.Clear, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k FormKeyMap) FullHelp() [][]key.Binding {
	return append([][]key.Binding{{k.Next, k.Prev, k.Submit, k.Quit}}, k.Field.FullHelp()...)
}
