package mask

import (
	"unicode/utf8"

	"github.com/zjrosen/maskfield/internal/log"
)

// Edit is the outcome of a committed edit. The caller replaces its value with
// Value and afterwards moves its caret to Caret.
type Edit struct {
	Value string
	Caret int

	// Notify is set when the commit is due a change notification carrying
	// Notified, the normalized value.
	Notify   bool
	Notified string
}

// Insert splices symbols into value at display offset position, replacing
// replaceLength display runes. Runes beyond the template length are dropped.
// It reports false, and value stays as it was, when the candidate fails
// validation.
func (m *Mask) Insert(value, symbols string, position, replaceLength int) (Edit, bool) {
	edit, _, ok := m.insert(value, symbols, position, replaceLength)
	return edit, ok
}

// Remove deletes length runes (at least one) at position. The deletion point
// first steps across a token starting at position, forward or backward, so a
// token is never partially destroyed.
func (m *Mask) Remove(value string, position, length int, forward bool) (Edit, bool) {
	tokenLen := m.tokens.lenAt(position)
	if forward {
		position += tokenLen
	} else {
		position -= tokenLen
	}
	if length <= 0 {
		length = 1
	}

	edit, rawPos, ok := m.insert(value, "", position, length)
	if !ok {
		return Edit{}, false
	}
	edit.Caret = m.caretFor(rawPos, edit.Value)
	return edit, true
}

// Cut deletes the selected display span [start, start+length) as is, with no
// token stepping. The caret lands where the span began.
func (m *Mask) Cut(value string, start, length int) (Edit, bool) {
	edit, rawPos, ok := m.insert(value, "", start, length)
	if !ok {
		return Edit{}, false
	}
	edit.Caret = m.caretFor(rawPos, edit.Value)
	return edit, true
}

// Jump returns the caret target of an arrow-key move across a token adjacent
// to caret: the token (and any token directly following it) is skipped along
// with one more rune. It reports false when no token is adjacent and the
// caller should move by one rune as usual.
func (m *Mask) Jump(value string, caret int, forward bool) (int, bool) {
	n := utf8.RuneCountInString(value)

	if forward {
		if m.tokens.At(caret) == "" {
			return caret, false
		}
		p := caret
		for l := m.tokens.lenAt(p); l > 0; l = m.tokens.lenAt(p) {
			p += l
		}
		return clamp(p+1, 0, n), true
	}

	tok, ok := m.tokens.endingAt(caret)
	if !ok {
		return caret, false
	}
	p := tok.Offset
	for {
		prev, ok := m.tokens.endingAt(p)
		if !ok {
			break
		}
		p = prev.Offset
	}
	return clamp(p-1, 0, n), true
}

// insert performs the edit and also returns the raw offset it happened at.
func (m *Mask) insert(value, symbols string, position, replaceLength int) (Edit, int, bool) {
	if position < 0 {
		replaceLength += position
		position = 0
	}
	if replaceLength < 0 {
		replaceLength = 0
	}

	raw := stripRunes([]rune(value), m.tokens, 0)
	sym := []rune(symbols)
	rawSym := stripRunes(sym, m.tokens, position)

	offset := OffsetBefore(position, m.tokens)
	insertPos := clamp(position-offset, 0, len(raw))
	end := position + replaceLength
	tailStart := clamp(end-OffsetBefore(end, m.tokens), insertPos, len(raw))

	newRaw := make([]rune, 0, len(raw)+len(rawSym))
	newRaw = append(newRaw, raw[:insertPos]...)
	newRaw = append(newRaw, rawSym...)
	newRaw = append(newRaw, raw[tailStart:]...)

	// Masking cuts the candidate to the template length, so an overflowing
	// paste keeps the runes that fit and drops the rest.
	next := applyRunes(newRaw, m.template, m.tokens)
	nextValue := string(next)
	if !m.validate(nextValue) {
		log.Debug(log.CatMask, "Edit rejected by validation", "candidate", nextValue)
		return Edit{}, 0, false
	}

	caret := position + len(sym) + (len(sym) - len(rawSym)) +
		m.tokens.lenAt(len(newRaw)+offset) + m.tokens.lenAt(position)

	edit := Edit{
		Value: nextValue,
		Caret: clamp(caret, 0, len(next)),
	}
	edit.Notify, edit.Notified = m.notification(value, nextValue)
	return edit, insertPos, true
}

// notification decides whether committing next over prev notifies, and with which value.
func (m *Mask) notification(prev, next string) (bool, string) {
	if prev == next {
		return false, ""
	}
	empty := m.IsEmpty(next)
	if m.notify == NotifyBoundary && len(m.template) > 0 && !empty && !m.IsComplete(next) {
		return false, ""
	}
	if empty {
		return true, ""
	}
	return true, next
}

// caretFor maps raw offset rawPos to the display offset just past the tokens
// preceding it, clamped to value.
func (m *Mask) caretFor(rawPos int, value string) int {
	p := rawPos
	for _, tok := range m.tokens {
		if tok.Offset > p {
			break
		}
		p += tok.Len()
	}
	return clamp(p, 0, utf8.RuneCountInString(value))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
