package mask

// OffsetBefore returns the total rune length of the tokens starting before
// position. Subtracting it converts a display offset to a raw offset.
func OffsetBefore(position int, tokens TokenTable) int {
	n := 0
	for _, tok := range tokens {
		if tok.Offset >= position {
			break
		}
		n += tok.Len()
	}
	return n
}

// StripTokens removes token literals from value. valueOffset is the display
// offset value starts at, which lets a fragment (typed or pasted text) be
// stripped of the tokens that would land inside it.
//
// Tokens whose literal is not present at their offset are left alone.
// Stripping stops at the first token lying beyond the end of value.
func StripTokens(value string, tokens TokenTable, valueOffset int) string {
	return string(stripRunes([]rune(value), tokens, valueOffset))
}

func stripRunes(value []rune, tokens TokenTable, valueOffset int) []rune {
	out := make([]rune, len(value))
	copy(out, value)

	removed := 0
	for _, tok := range tokens {
		index := tok.Offset - valueOffset
		if index < 0 {
			continue
		}
		if index >= len(value) {
			break
		}
		literal := []rune(tok.Literal)
		if !hasAt(value, index, literal) {
			continue
		}
		out = splice(out, index-removed, len(literal), nil)
		removed += len(literal)
	}
	return out
}
