// Package form provides a full-screen form of masked fields.
//
// Keyboard Navigation:
//
//	Tab, Down         - Next field
//	Shift+Tab, Up     - Previous field
//	Enter             - Next field; submits on the last field
//	Esc, Ctrl+C       - Cancel
//
// Clicking a field focuses it and moves the caret under the pointer.
//
// Change notifications published by the fields are collected through a
// pubsub broker and shown on the status line. When the program exits, Result
// returns the submitted values.
package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/maskfield/internal/keys"
	"github.com/zjrosen/maskfield/internal/log"
	"github.com/zjrosen/maskfield/internal/pubsub"
	"github.com/zjrosen/maskfield/internal/ui/maskinput"
	"github.com/zjrosen/maskfield/internal/ui/styles"
)

// Field is one form row: a labelled masked input.
type Field struct {
	Label string
	Hint  string
	Input maskinput.Model
}

// Value is a submitted field value.
type Value struct {
	Name     string
	Value    string // normalized, "" when nothing was typed
	Complete bool
}

// ReloadMsg replaces the form's fields, e.g. after the config file changed.
// Values typed so far are carried over, stripped of their literals, to
// fields of the same name and re-masked there.
type ReloadMsg struct {
	Fields []Field
}

// ReloadFailedMsg reports a config change that could not be applied. The
// current fields stay in place.
type ReloadFailedMsg struct {
	Err error
}

// Model is the form state. It is meant to be the root model of a program.
type Model struct {
	fields  []Field
	focused int

	broker   *pubsub.Broker[maskinput.Change]
	listener *pubsub.ContinuousListener[maskinput.Change]

	status    string
	statusErr bool
	submitted bool
	width     int

	keys keys.FormKeyMap
	help help.Model
}

// New creates a form over fields and focuses the first one. The change
// subscription lives until ctx is cancelled.
func New(ctx context.Context, fields []Field) Model {
	broker := pubsub.NewBroker[maskinput.Change]()
	m := Model{
		broker:   broker,
		listener: pubsub.NewContinuousListener(ctx, broker),
		keys:     keys.DefaultFormKeyMap(),
		help:     help.New(),
	}
	m.setFields(fields, nil)
	return m
}

func (m *Model) setFields(fields []Field, previous map[string]string) {
	m.fields = make([]Field, len(fields))
	copy(m.fields, fields)
	for i := range m.fields {
		in := &m.fields[i].Input
		in.SetPublisher(m.broker)
		if v, ok := previous[in.Name()]; ok && v != "" {
			if !in.SetValue(v) {
				log.Warn(log.CatUI, "Dropped value on reload", "field", in.Name())
			}
		}
		in.Blur()
	}
	m.focused = min(m.focused, max(len(m.fields)-1, 0))
	if len(m.fields) > 0 {
		m.fields[m.focused].Input.Focus()
	}
}

// Init starts listening for change notifications.
func (m Model) Init() tea.Cmd {
	return m.listener.Listen()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pubsub.Event[maskinput.Change]:
		if missed := m.listener.Missed(msg); missed > 0 {
			log.Debug(log.CatUI, "Status line skipped notifications", "missed", missed)
		}
		m.status, m.statusErr = statusFor(msg), false
		return m, m.listener.Listen()

	case ReloadMsg:
		previous := make(map[string]string, len(m.fields))
		for _, f := range m.fields {
			previous[f.Input.Name()] = f.Input.RawValue()
		}
		m.setFields(msg.Fields, previous)
		m.status, m.statusErr = "config reloaded", false
		log.Info(log.CatUI, "Form reloaded", "fields", len(msg.Fields))
		return m, nil

	case ReloadFailedMsg:
		m.status, m.statusErr = "reload failed: "+msg.Err.Error(), true
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			m.handleFieldClick(msg)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste || len(m.fields) == 0 {
		return m.forward(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		log.Debug(log.CatUI, "Form cancelled")
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		if m.focused == len(m.fields)-1 {
			m.submitted = true
			log.Debug(log.CatUI, "Form submitted", "fields", len(m.fields))
			return m, tea.Quit
		}
		m.focusField(m.focused + 1)
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.focusField((m.focused + 1) % len(m.fields))
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.focusField((m.focused - 1 + len(m.fields)) % len(m.fields))
		return m, nil
	}

	return m.forward(msg)
}

// forward hands msg to the focused input.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focused].Input, cmd = m.fields[m.focused].Input.Update(msg)
	return m, cmd
}

// handleFieldClick focuses the clicked field and places its caret.
func (m *Model) handleFieldClick(msg tea.MouseMsg) {
	for i := range m.fields {
		z := zone.Get(m.fields[i].Input.ID())
		if z == nil || !z.InBounds(msg) {
			continue
		}
		m.focusField(i)
		if col, _ := z.Pos(msg); col >= 0 {
			m.fields[i].Input.SetCursorColumn(col)
		}
		return
	}
}

func (m *Model) focusField(index int) {
	if index < 0 || index >= len(m.fields) {
		return
	}
	m.fields[m.focused].Input.Blur()
	m.focused = index
	m.fields[index].Input.Focus()
}

// Focused returns the index of the focused field.
func (m Model) Focused() int {
	return m.focused
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// Fields returns the form's fields.
func (m Model) Fields() []Field {
	return m.fields
}

// Result returns the field values and whether the form was submitted.
func (m Model) Result() ([]Value, bool) {
	values := make([]Value, len(m.fields))
	for i, f := range m.fields {
		values[i] = Value{
			Name:     f.Input.Name(),
			Value:    f.Input.NormalizedValue(),
			Complete: f.Input.Complete(),
		}
	}
	return values, m.submitted
}

// View renders the form.
func (m Model) View() string {
	var b strings.Builder
	for i, f := range m.fields {
		state := styles.FieldIdle
		switch {
		case i == m.focused:
			state = styles.FieldFocused
		case f.Input.Complete():
			state = styles.FieldComplete
		}
		content := zone.Mark(f.Input.ID(), f.Input.View())
		b.WriteString(styles.RenderFieldBox(content, f.Label, f.Hint, f.Input.Width()+2, state))
		b.WriteString("\n")
	}

	switch {
	case m.statusErr:
		b.WriteString(styles.StatusBarStyle.Render(styles.ErrorStyle.Render(m.status)))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(styles.StatusBarStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return zone.Scan(b.String())
}

func statusFor(ev pubsub.Event[maskinput.Change]) string {
	if ev.Type == pubsub.ClearedEvent {
		return fmt.Sprintf("%s cleared", ev.Payload.Name)
	}
	return fmt.Sprintf("%s: %s", ev.Payload.Name, ev.Payload.Value)
}
