package mask

// Apply produces the canonical form of value: missing tokens are spliced in at
// their offsets, runes whose class differs from the template slot at the same
// index are dropped, and the result is cut to the template length. With an
// empty template only the token splicing happens.
func Apply(value, template string, tokens TokenTable) string {
	return string(applyRunes([]rune(value), []rune(template), tokens))
}

func applyRunes(value, template []rune, tokens TokenTable) []rune {
	out := make([]rune, len(value))
	copy(out, value)

	for _, tok := range tokens {
		if tok.Offset > len(out) {
			continue
		}
		literal := []rune(tok.Literal)
		if hasAt(out, tok.Offset, literal) {
			continue
		}
		out = splice(out, tok.Offset, 0, literal)
	}

	if len(template) == 0 {
		return out
	}

	// Indexes refer to the spliced value, not to the filtered output: a rune
	// failing its slot is dropped and does not try the next slot.
	kept := make([]rune, 0, len(template))
	for i, r := range out {
		if i >= len(template) {
			break
		}
		if SameClass(r, template[i]) {
			kept = append(kept, r)
		}
	}
	return kept
}

// hasAt reports whether s holds literal starting at offset.
func hasAt(s []rune, offset int, literal []rune) bool {
	if offset < 0 || offset+len(literal) > len(s) {
		return false
	}
	for i, r := range literal {
		if s[offset+i] != r {
			return false
		}
	}
	return true
}

// splice replaces n runes of s at offset with insert and returns a new slice.
func splice(s []rune, offset, n int, insert []rune) []rune {
	out := make([]rune, 0, len(s)-n+len(insert))
	out = append(out, s[:offset]...)
	out = append(out, insert...)
	return append(out, s[offset+n:]...)
}
