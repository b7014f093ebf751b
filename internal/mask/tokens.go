package mask

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Token is a literal that must appear verbatim at Offset in the canonical value.
type Token struct {
	Offset  int
	Literal string
}

// Len returns the literal length in runes.
func (t Token) Len() int {
	return utf8.RuneCountInString(t.Literal)
}

// End returns the offset just past the literal.
func (t Token) End() int {
	return t.Offset + t.Len()
}

// TokenTable is a set of tokens ordered by ascending offset. Tokens never overlap.
type TokenTable []Token

// NewTokenTable builds a table from an offset → literal mapping. Empty
// literals, negative offsets and entries overlapping an earlier token are dropped.
func NewTokenTable(m map[int]string) TokenTable {
	if len(m) == 0 {
		return nil
	}

	offsets := make([]int, 0, len(m))
	for offset := range m {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	table := make(TokenTable, 0, len(offsets))
	end := 0
	for _, offset := range offsets {
		literal := m[offset]
		if literal == "" || offset < 0 || offset < end {
			continue
		}
		tok := Token{Offset: offset, Literal: literal}
		table = append(table, tok)
		end = tok.End()
	}
	return table
}

// DeriveTokens computes the literal tokens of template by comparing it with
// placeholder position by position. Every maximal run where both strings hold
// the same rune becomes a token starting at the run's first offset.
//
// Slot markers in template must never equal the filler used by placeholder,
// otherwise the slot is taken for a literal.
func DeriveTokens(template, placeholder string) TokenTable {
	tmpl := []rune(template)
	ph := []rune(placeholder)

	var table TokenTable
	runStart := 0
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			table = append(table, Token{Offset: runStart, Literal: run.String()})
			run.Reset()
		}
	}

	for i, r := range tmpl {
		if i < len(ph) && ph[i] == r {
			run.WriteRune(r)
			continue
		}
		flush()
		runStart = i + 1
	}
	flush()

	return table
}

// At returns the literal of the token starting at offset, or "".
func (t TokenTable) At(offset int) string {
	for _, tok := range t {
		if tok.Offset == offset {
			return tok.Literal
		}
		if tok.Offset > offset {
			break
		}
	}
	return ""
}

// lenAt returns the rune length of the token starting at offset.
func (t TokenTable) lenAt(offset int) int {
	return utf8.RuneCountInString(t.At(offset))
}

// endingAt returns the token whose literal ends exactly at offset.
func (t TokenTable) endingAt(offset int) (Token, bool) {
	for _, tok := range t {
		if tok.End() == offset {
			return tok, true
		}
		if tok.Offset >= offset {
			break
		}
	}
	return Token{}, false
}

// Leading returns the token at offset 0, the literal prefix shown by an empty field.
func (t TokenTable) Leading() string {
	return t.At(0)
}

// Map returns the table as an offset → literal mapping.
func (t TokenTable) Map() map[int]string {
	m := make(map[int]string, len(t))
	for _, tok := range t {
		m[tok.Offset] = tok.Literal
	}
	return m
}

// BuildPlaceholder replaces every word-class rune of template with filler and
// keeps all other runes as literal punctuation.
func BuildPlaceholder(template string, filler rune) string {
	return strings.Map(func(r rune) rune {
		if Classify(r) != ClassOther {
			return filler
		}
		return r
	}, template)
}

// PlaceholderFromTokens lays out the tokens at their offsets, filling the gaps
// between them with filler. {0:"$", 2:"."} becomes "$ .".
func PlaceholderFromTokens(tokens TokenTable, filler rune) string {
	var b strings.Builder
	n := 0
	for _, tok := range tokens {
		if gap := tok.Offset - n; gap > 0 {
			b.WriteString(strings.Repeat(string(filler), gap))
			n += gap
		}
		b.WriteString(tok.Literal)
		n += tok.Len()
	}
	return b.String()
}
