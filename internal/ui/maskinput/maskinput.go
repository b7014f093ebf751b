// Package maskinput provides a single-line text input whose value always
// conforms to a mask.
//
// The model owns the canonical value, the caret and an optional selection.
// Every edit event is handed to the mask engine, which returns the next value
// and the caret target; the model commits the value first and moves the caret
// afterwards. Commits that are due a change notification are published on the
// configured pubsub.Publisher.
package maskinput

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/padding"

	"github.com/zjrosen/maskfield/internal/keys"
	"github.com/zjrosen/maskfield/internal/log"
	"github.com/zjrosen/maskfield/internal/mask"
	"github.com/zjrosen/maskfield/internal/pubsub"
	"github.com/zjrosen/maskfield/internal/ui/styles"
)

// Change is the payload of a change notification.
type Change struct {
	FieldID string
	Name    string
	// Value is the normalized value: "" once the field is back to its empty baseline.
	Value string
}

// Model is a single-line masked text input.
type Model struct {
	id    string
	name  string
	mask  *mask.Mask
	value string

	cursor  int // display offset, in runes
	anchor  int // selection anchor, -1 without a selection
	focused bool
	width   int

	placeholder    string // shown when the field is blurred and empty
	alwaysShowMask bool
	fitWidth       bool
	pasteFilter    func(string) string

	publisher pubsub.Publisher[Change]
	keys      keys.FieldKeyMap
}

// New creates a field named name that edits through m. A nil mask edits
// without any masking.
func New(name string, m *mask.Mask) Model {
	if m == nil {
		m = mask.Compile(mask.Options{})
	}
	return Model{
		id:             "maskinput-" + uuid.NewString(),
		name:           name,
		mask:           m,
		value:          m.Initial(""),
		anchor:         -1,
		width:          40,
		alwaysShowMask: true,
		keys:           keys.DefaultFieldKeyMap(),
	}
}

// ID returns the unique instance ID, used for mouse zones and change events.
func (m Model) ID() string {
	return m.id
}

// Name returns the field name.
func (m Model) Name() string {
	return m.name
}

// Mask returns the compiled mask.
func (m Model) Mask() *mask.Mask {
	return m.mask
}

// Value returns the canonical value, leading literal included.
func (m Model) Value() string {
	return m.value
}

// RawValue returns the value without its literals.
func (m Model) RawValue() string {
	return mask.StripTokens(m.value, m.mask.Tokens(), 0)
}

// NormalizedValue returns the value as reported to listeners: "" when
// nothing has been typed.
func (m Model) NormalizedValue() string {
	return m.mask.Normalize(m.value)
}

// Complete reports whether every slot of the template is filled.
func (m Model) Complete() bool {
	return m.mask.IsComplete(m.value)
}

// SetValue masks and validates an externally supplied value. A value that
// fails validation is ignored and SetValue reports false. No change
// notification is published.
func (m *Model) SetValue(v string) bool {
	next, ok := m.mask.Set(v)
	if !ok {
		return false
	}
	m.value = next
	m.anchor = -1
	m.SetCursor(m.cursor)
	return true
}

// Cursor returns the caret position.
func (m Model) Cursor() int {
	return m.cursor
}

// SetCursor moves the caret, clamped between the leading literal and the
// end of the value.
func (m *Model) SetCursor(pos int) {
	n := utf8.RuneCountInString(m.value)
	lo := min(utf8.RuneCountInString(m.mask.Leading()), n)
	m.cursor = max(lo, min(pos, n))
}

// SetCursorColumn moves the caret to the cluster under display column col,
// as reported for a mouse click.
func (m *Model) SetCursorColumn(col int) {
	m.anchor = -1
	m.SetCursor(columnOffset(m.value, col))
}

// Selection returns the selected display span.
func (m Model) Selection() (start, end int, ok bool) {
	if m.anchor < 0 || m.anchor == m.cursor {
		return 0, 0, false
	}
	return min(m.anchor, m.cursor), max(m.anchor, m.cursor), true
}

// Focused returns whether the input is focused.
func (m Model) Focused() bool {
	return m.focused
}

// Focus focuses the input and puts the caret at the end of the value.
func (m *Model) Focus() {
	m.focused = true
	m.anchor = -1
	m.SetCursor(utf8.RuneCountInString(m.value))
}

// Blur removes focus from the input.
func (m *Model) Blur() {
	m.focused = false
	m.anchor = -1
}

// SetWidth sets the display width. It has no effect on a fit-width field.
func (m *Model) SetWidth(w int) {
	if w < 1 {
		w = 1
	}
	m.width = w
}

// Width returns the display width. A fit-width field is as wide as its mask
// placeholder plus one cell for the caret.
func (m Model) Width() int {
	if m.fitWidth {
		return max(runewidth.StringWidth(m.mask.Placeholder()), 1) + 1
	}
	return m.width
}

// SetFitWidth sizes the field to its mask placeholder.
func (m *Model) SetFitWidth(fit bool) {
	m.fitWidth = fit
}

// SetPlaceholder sets the text shown while the field is blurred and empty.
func (m *Model) SetPlaceholder(p string) {
	m.placeholder = p
}

// SetAlwaysShowMask controls whether a blurred field shows the mask
// placeholder. With a text placeholder configured, an empty blurred field
// shows the text placeholder instead.
func (m *Model) SetAlwaysShowMask(show bool) {
	m.alwaysShowMask = show
}

// SetPasteFilter sets a hook applied to pasted text before it is inserted.
func (m *Model) SetPasteFilter(fn func(string) string) {
	m.pasteFilter = fn
}

// SetPublisher sets where change notifications are published.
func (m *Model) SetPublisher(p pubsub.Publisher[Change]) {
	m.publisher = p
}

// Update handles key messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Paste {
		return m.paste(string(msg.Runes))
	}

	switch {
	case key.Matches(msg, m.keys.SelectLeft):
		m.extendSelection(false)
	case key.Matches(msg, m.keys.SelectRight):
		m.extendSelection(true)
	case key.Matches(msg, m.keys.SelectAll):
		m.SetCursor(0)
		m.anchor = m.cursor
		m.SetCursor(utf8.RuneCountInString(m.value))
	case key.Matches(msg, m.keys.Left):
		m.move(false)
	case key.Matches(msg, m.keys.Right):
		m.move(true)
	case key.Matches(msg, m.keys.Home):
		m.anchor = -1
		m.SetCursor(0)
	case key.Matches(msg, m.keys.End):
		m.anchor = -1
		m.SetCursor(utf8.RuneCountInString(m.value))
	case key.Matches(msg, m.keys.Backspace):
		return m.remove(false)
	case key.Matches(msg, m.keys.Delete):
		return m.remove(true)
	case key.Matches(msg, m.keys.Clear):
		return m.commit(m.mask.Cut(m.value, 0, utf8.RuneCountInString(m.value)))
	case msg.Type == tea.KeySpace:
		return m.insertRunes([]rune{' '})
	case msg.Type == tea.KeyRunes && !msg.Alt:
		return m.insertRunes(msg.Runes)
	}

	return m, nil
}

// insertRunes types runes one at a time. The first one replaces the selection.
func (m Model) insertRunes(runes []rune) (Model, tea.Cmd) {
	for _, r := range runes {
		start, length := m.cursor, 0
		if s, e, ok := m.Selection(); ok {
			start, length = s, e-s
		}
		m, _ = m.commit(m.mask.Insert(m.value, string(r), start, length))
		m.anchor = -1
	}
	return m, nil
}

func (m Model) paste(text string) (Model, tea.Cmd) {
	if m.pasteFilter != nil {
		text = m.pasteFilter(text)
	}
	if text == "" {
		return m, nil
	}
	start, length := m.cursor, 0
	if s, e, ok := m.Selection(); ok {
		start, length = s, e-s
	}
	return m.commit(m.mask.Insert(m.value, text, start, length))
}

func (m Model) remove(forward bool) (Model, tea.Cmd) {
	if s, e, ok := m.Selection(); ok {
		return m.commit(m.mask.Cut(m.value, s, e-s))
	}
	if forward {
		if m.cursor >= utf8.RuneCountInString(m.value) {
			return m, nil
		}
		n := nextBoundary(m.value, m.cursor) - m.cursor
		return m.commit(m.mask.Remove(m.value, m.cursor, n, true))
	}
	if m.cursor <= 0 {
		return m, nil
	}
	start := max(prevBoundary(m.value, m.cursor), 0)
	return m.commit(m.mask.Remove(m.value, start, m.cursor-start, false))
}

// commit applies an accepted edit: value first, then the caret.
func (m Model) commit(edit mask.Edit, ok bool) (Model, tea.Cmd) {
	if !ok {
		return m, nil
	}
	m.value = edit.Value
	m.anchor = -1
	m.SetCursor(edit.Caret)

	if edit.Notify && m.publisher != nil {
		eventType := pubsub.ChangedEvent
		if edit.Notified == "" {
			eventType = pubsub.ClearedEvent
		}
		log.Debug(log.CatUI, "Field changed", "field", m.name, "value", edit.Notified)
		m.publisher.Publish(eventType, Change{FieldID: m.id, Name: m.name, Value: edit.Notified})
	}
	return m, nil
}

func (m *Model) move(forward bool) {
	m.anchor = -1
	if target, ok := m.mask.Jump(m.value, m.cursor, forward); ok {
		m.SetCursor(target)
		return
	}
	if forward {
		m.SetCursor(nextBoundary(m.value, m.cursor))
	} else {
		m.SetCursor(prevBoundary(m.value, m.cursor))
	}
}

func (m *Model) extendSelection(forward bool) {
	if m.anchor < 0 {
		m.anchor = m.cursor
	}
	if forward {
		m.SetCursor(nextBoundary(m.value, m.cursor))
	} else {
		m.SetCursor(prevBoundary(m.value, m.cursor))
	}
	if m.cursor == m.anchor {
		m.anchor = -1
	}
}

// ANSI codes for cursor - only toggle reverse, don't reset other styles
const (
	cursorOn  = "\x1b[7m"  // reverse video on
	cursorOff = "\x1b[27m" // reverse video off (not full reset)
)

// View renders the value, the part of the mask placeholder not yet covered
// by it, and the caret when focused.
func (m Model) View() string {
	display := m.mask.Display(m.value, m.focused)
	showMask := m.focused || (m.alwaysShowMask && (m.placeholder == "" || display != ""))

	var rest string
	switch {
	case showMask:
		rest = m.mask.Remaining(display)
	case display == "":
		rest = m.placeholder
	}

	var b strings.Builder
	b.WriteString(m.renderValue(display))

	_, _, selecting := m.Selection()
	if m.focused && !selecting && m.cursor >= utf8.RuneCountInString(display) {
		// Caret past the value sits on the first placeholder cell.
		if r, size := utf8.DecodeRuneInString(rest); size > 0 {
			b.WriteString(cursorOn + string(r) + cursorOff)
			rest = rest[size:]
		} else {
			b.WriteString(cursorOn + " " + cursorOff)
		}
	}
	if rest != "" {
		b.WriteString(styles.PlaceholderStyle.Render(rest))
	}

	return m.fit(b.String())
}

// renderValue renders display with literals, selection and caret styled.
func (m Model) renderValue(display string) string {
	runes := []rune(display)
	if len(runes) == 0 {
		return ""
	}

	literal := make([]bool, len(runes))
	for _, tok := range m.mask.Tokens() {
		for i := tok.Offset; i < tok.End() && i < len(runes); i++ {
			literal[i] = true
		}
	}
	selStart, selEnd, selecting := m.Selection()

	bounds := clusterBounds(display)
	var b strings.Builder
	for k := 0; k+1 < len(bounds); k++ {
		i, end := bounds[k], bounds[k+1]
		s := string(runes[i:end])
		switch {
		case m.focused && selecting && i >= selStart && i < selEnd:
			b.WriteString(styles.SelectionStyle.Render(s))
		case m.focused && !selecting && m.cursor >= i && m.cursor < end:
			b.WriteString(cursorOn + s + cursorOff)
		case literal[i]:
			b.WriteString(styles.LiteralStyle.Render(s))
		default:
			b.WriteString(styles.ValueStyle.Render(s))
		}
	}
	return b.String()
}

// fit scrolls the rendered line so the caret stays visible, then pads or
// truncates it to the field width.
func (m Model) fit(line string) string {
	w := m.Width()
	if m.focused {
		caretCol := runewidth.StringWidth(string([]rune(m.value)[:min(m.cursor, utf8.RuneCountInString(m.value))]))
		if shift := caretCol - w + 1; shift > 0 {
			line = ansi.TruncateLeft(line, shift, "")
		}
	}
	if lipgloss.Width(line) > w {
		return ansi.Truncate(line, w, "")
	}
	return padding.String(line, uint(w))
}
