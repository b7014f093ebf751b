package maskinput

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/maskfield/internal/mask"
	"github.com/zjrosen/maskfield/internal/pubsub"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

const fullPhone = "+7 (904)-148-76-23"

func newPhone() Model {
	m := New("phone", mask.Compile(mask.Options{
		Template:    "+7 (999)-999-99-99",
		Placeholder: "+7 (___)-___-__-__",
	}))
	m.Focus()
	return m
}

func typeKeys(m Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, t tea.KeyType, times int) Model {
	for i := 0; i < times; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: t})
	}
	return m
}

func receive(t *testing.T, ch <-chan pubsub.Event[Change]) pubsub.Event[Change] {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for change event")
		return pubsub.Event[Change]{}
	}
}

func requireNoEvent(t *testing.T, ch <-chan pubsub.Event[Change]) {
	t.Helper()
	select {
	case ev := <-ch:
		require.Failf(t, "unexpected event", "%s %q", ev.Type, ev.Payload.Value)
	default:
	}
}

func TestNew_StartsAtLeadingLiteral(t *testing.T) {
	m := newPhone()
	require.Equal(t, "+7 (", m.Value())
	require.Equal(t, "", m.NormalizedValue())
	require.Equal(t, 4, m.Cursor())
	require.True(t, strings.HasPrefix(m.ID(), "maskinput-"))
	require.Equal(t, "phone", m.Name())
}

func TestNew_NilMaskPassesThrough(t *testing.T) {
	m := New("free", nil)
	m.Focus()
	m = typeKeys(m, "abc")
	require.Equal(t, "abc", m.Value())
}

func TestUpdate_CaretMovesByCluster(t *testing.T) {
	m := New("free", nil)
	require.True(t, m.SetValue(accented))
	m.Focus()
	require.Equal(t, 5, m.Cursor())

	m = press(m, tea.KeyLeft, 1)
	require.Equal(t, 3, m.Cursor(), "the accent travels with its letter")
	require.Contains(t, m.View(), "\x1b[7me\u0301\x1b[27m")

	m = press(m, tea.KeyShiftRight, 1)
	start, end, ok := m.Selection()
	require.True(t, ok)
	require.Equal(t, []int{3, 5}, []int{start, end})

	m = press(m, tea.KeyEnd, 1)
	m = press(m, tea.KeyBackspace, 1)
	require.Equal(t, "caf", m.Value())
	require.Equal(t, 3, m.Cursor())
}

func TestUpdate_DeleteForwardRemovesCluster(t *testing.T) {
	m := New("free", nil)
	require.True(t, m.SetValue("👍🏽ok"))
	m.Focus()
	m = press(m, tea.KeyHome, 1)

	m = press(m, tea.KeyDelete, 1)
	require.Equal(t, "ok", m.Value())
	require.Equal(t, 0, m.Cursor())
}

func TestUpdate_TypingPhone(t *testing.T) {
	m := typeKeys(newPhone(), "9041487623")
	require.Equal(t, fullPhone, m.Value())
	require.Equal(t, 18, m.Cursor())
	require.True(t, m.Complete())
}

func TestRawValue(t *testing.T) {
	m := typeKeys(newPhone(), "90414")
	require.Equal(t, "+7 (904)-14", m.Value())
	require.Equal(t, "90414", m.RawValue())
}

func TestUpdate_BatchedRunes(t *testing.T) {
	m := newPhone()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9041487623")})
	require.Equal(t, fullPhone, m.Value())
	require.Equal(t, 18, m.Cursor())
}

func TestUpdate_RejectedRuneKeepsCaret(t *testing.T) {
	m := typeKeys(newPhone(), "9a")
	require.Equal(t, "+7 (9", m.Value())
	require.Equal(t, 5, m.Cursor())
}

func TestUpdate_BlurredIgnoresKeys(t *testing.T) {
	m := newPhone()
	m.Blur()
	m = typeKeys(m, "904")
	require.Equal(t, "+7 (", m.Value())
}

func TestUpdate_PublishesBoundaryChanges(t *testing.T) {
	broker := pubsub.NewBroker[Change]()
	defer broker.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := broker.Subscribe(ctx)

	m := newPhone()
	m.SetPublisher(broker)

	m = typeKeys(m, "904148762")
	requireNoEvent(t, ch)

	m = typeKeys(m, "3")
	ev := receive(t, ch)
	require.Equal(t, pubsub.ChangedEvent, ev.Type)
	require.Equal(t, Change{FieldID: m.ID(), Name: "phone", Value: fullPhone}, ev.Payload)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	require.Equal(t, "+7 (", m.Value())
	require.Equal(t, 4, m.Cursor())
	ev = receive(t, ch)
	require.Equal(t, pubsub.ClearedEvent, ev.Type)
	require.Equal(t, "", ev.Payload.Value)
	requireNoEvent(t, ch)
}

func TestUpdate_BackspaceToEmpty(t *testing.T) {
	m := typeKeys(newPhone(), "9041487623")
	m = press(m, tea.KeyBackspace, 3)
	require.Equal(t, "+7 (904)-148-7", m.Value())
	require.Equal(t, 14, m.Cursor())

	m = press(m, tea.KeyBackspace, 10)
	require.Equal(t, "+7 (", m.Value())
	require.Equal(t, 4, m.Cursor())
}

func TestUpdate_DeleteForward(t *testing.T) {
	m := typeKeys(newPhone(), "9041487623")
	m.SetCursor(7)
	m = press(m, tea.KeyDelete, 1)
	require.Equal(t, "+7 (904)-487-62-3", m.Value())
	require.Equal(t, 9, m.Cursor())

	m = press(m, tea.KeyEnd, 1)
	m = press(m, tea.KeyDelete, 1)
	require.Equal(t, "+7 (904)-487-62-3", m.Value(), "delete at the end is a no-op")
}

func TestUpdate_ArrowsJumpTokens(t *testing.T) {
	m := newPhone()
	require.True(t, m.SetValue(fullPhone))
	m.SetCursor(9)

	m = press(m, tea.KeyLeft, 1)
	require.Equal(t, 6, m.Cursor())

	m = press(m, tea.KeyRight, 1)
	require.Equal(t, 7, m.Cursor())

	m = press(m, tea.KeyRight, 1)
	require.Equal(t, 10, m.Cursor())
}

func TestUpdate_CaretNeverEntersLeadingLiteral(t *testing.T) {
	m := typeKeys(newPhone(), "9")
	m = press(m, tea.KeyLeft, 3)
	require.Equal(t, 4, m.Cursor())

	m = press(m, tea.KeyHome, 1)
	require.Equal(t, 4, m.Cursor())

	m = press(m, tea.KeyBackspace, 1)
	require.Equal(t, "+7 (9", m.Value())
}

func TestUpdate_SelectionBackspaceCutsSpan(t *testing.T) {
	m := typeKeys(newPhone(), "9041487623")
	m = press(m, tea.KeyShiftLeft, 3)

	start, end, ok := m.Selection()
	require.True(t, ok)
	require.Equal(t, 15, start)
	require.Equal(t, 18, end)

	m = press(m, tea.KeyBackspace, 1)
	require.Equal(t, "+7 (904)-148-76-", m.Value())
	require.Equal(t, 16, m.Cursor())
	_, _, ok = m.Selection()
	require.False(t, ok)
}

func TestUpdate_TypingReplacesSelection(t *testing.T) {
	m := typeKeys(newPhone(), "9041487623")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	start, end, ok := m.Selection()
	require.True(t, ok)
	require.Equal(t, 4, start)
	require.Equal(t, 18, end)

	m = typeKeys(m, "5")
	require.Equal(t, "+7 (5", m.Value())
	require.Equal(t, 5, m.Cursor())
}

func TestUpdate_RejectedRuneEndsSelection(t *testing.T) {
	m := New("phone", mask.Compile(mask.Options{
		Template:    "+7 (999)-999-99-99",
		Placeholder: "+7 (___)-___-__-__",
		Validate:    func(v string) bool { return !strings.Contains(v, "5") },
	}))
	m.Focus()
	m = typeKeys(m, "9041487623")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("57")})
	require.Equal(t, fullPhone, m.Value(), "only the first rune may replace the selection")
	_, _, ok := m.Selection()
	require.False(t, ok)
}

func TestUpdate_ShiftBackCollapsesSelection(t *testing.T) {
	m := typeKeys(newPhone(), "904")
	m = press(m, tea.KeyShiftLeft, 1)
	m = press(m, tea.KeyShiftRight, 1)
	_, _, ok := m.Selection()
	require.False(t, ok)
}

func TestUpdate_PasteThroughFilter(t *testing.T) {
	m := newPhone()
	m.SetPasteFilter(func(s string) string {
		return strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, s)
	})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("(904) 148 76 23"), Paste: true})
	require.Equal(t, fullPhone, m.Value())
}

func TestUpdate_PasteRawDigits(t *testing.T) {
	m := newPhone()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("904"), Paste: true})
	require.Equal(t, "+7 (904)-", m.Value())
	require.Equal(t, 9, m.Cursor())
}

func TestSetValue(t *testing.T) {
	m := New("phone", mask.Compile(mask.Options{
		Template: "+7 (999)-999-99-99",
		Validate: func(v string) bool { return !strings.Contains(v, "000") },
	}))

	require.True(t, m.SetValue("9041487623"))
	require.Equal(t, fullPhone, m.Value())

	require.False(t, m.SetValue("000"))
	require.Equal(t, fullPhone, m.Value(), "rejected external value is ignored")
}

func TestSetCursorColumn(t *testing.T) {
	m := typeKeys(newPhone(), "9041487623")

	m.SetCursorColumn(6)
	require.Equal(t, 6, m.Cursor())

	m.SetCursorColumn(1)
	require.Equal(t, 4, m.Cursor())

	m.SetCursorColumn(100)
	require.Equal(t, 18, m.Cursor())
}

func TestView_BlurredEmptyShowsMask(t *testing.T) {
	m := newPhone()
	m.Blur()
	require.Equal(t, "+7 (___)-___-__-__", strings.TrimRight(ansi.Strip(m.View()), " "))
}

func TestView_BlurredEmptyShowsTextPlaceholder(t *testing.T) {
	m := newPhone()
	m.SetPlaceholder("Enter your phone number")
	m.Blur()
	require.Equal(t, "Enter your phone number", strings.TrimRight(ansi.Strip(m.View()), " "))

	m.SetAlwaysShowMask(false)
	require.Equal(t, "Enter your phone number", strings.TrimRight(ansi.Strip(m.View()), " "))
}

func TestView_BlurredPartialHidesMaskWhenAsked(t *testing.T) {
	m := newPhone()
	m.SetAlwaysShowMask(false)
	require.True(t, m.SetValue("904"))
	m.Blur()
	require.Equal(t, "+7 (904)-", strings.TrimRight(ansi.Strip(m.View()), " "))
}

func TestView_FocusedShowsRemainderAndCaret(t *testing.T) {
	m := typeKeys(newPhone(), "90")
	view := m.View()
	require.Equal(t, "+7 (90_)-___-__-__", strings.TrimRight(ansi.Strip(view), " "))
	require.Contains(t, view, cursorOn+"_"+cursorOff, "caret sits on the first unfilled slot")
}

func TestView_CompleteValueCaretBlock(t *testing.T) {
	m := typeKeys(newPhone(), "9041487623")
	view := m.View()
	require.Contains(t, view, cursorOn+" "+cursorOff)
	require.Equal(t, fullPhone, strings.TrimRight(ansi.Strip(view), " "))
}

func TestView_Width(t *testing.T) {
	m := newPhone()
	m.SetWidth(30)
	require.Equal(t, 30, lipgloss.Width(m.View()))

	m.SetFitWidth(true)
	require.Equal(t, 19, m.Width())
	require.Equal(t, 19, lipgloss.Width(m.View()))

	m = typeKeys(m, "9041487623")
	require.Equal(t, 19, lipgloss.Width(m.View()))
}

func TestView_ScrollsToCaret(t *testing.T) {
	m := New("free", nil)
	m.SetWidth(5)
	m.Focus()
	m = typeKeys(m, "abcdefgh")
	view := ansi.Strip(m.View())
	require.Equal(t, 5, lipgloss.Width(view))
	require.True(t, strings.HasPrefix(view, "efgh"), "view %q", view)
}
