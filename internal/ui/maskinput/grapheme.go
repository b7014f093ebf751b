package maskinput

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// The mask engine works in rune offsets. The field moves, deletes and draws
// whole grapheme clusters so an accent or a joined emoji is never split by
// the caret. The helpers below translate between the two.

// clusterBounds returns the rune offsets at which the grapheme clusters of s
// start, followed by the rune length of s.
func clusterBounds(s string) []int {
	bounds := make([]int, 0, len(s)+1)
	offset := 0
	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		bounds = append(bounds, offset)
		offset += utf8.RuneCountInString(cluster)
	}
	return append(bounds, offset)
}

// nextBoundary returns the first cluster boundary after pos. Past the end of
// s it steps one rune, leaving clamping to the caller.
func nextBoundary(s string, pos int) int {
	for _, b := range clusterBounds(s) {
		if b > pos {
			return b
		}
	}
	return pos + 1
}

// prevBoundary returns the last cluster boundary before pos.
func prevBoundary(s string, pos int) int {
	prev := pos - 1
	for _, b := range clusterBounds(s) {
		if b >= pos {
			break
		}
		prev = b
	}
	return prev
}

// columnOffset returns the rune offset of the cluster under display column
// col, or the rune length of s when col lies past its end.
func columnOffset(s string, col int) int {
	offset, w := 0, 0
	state := -1
	for s != "" {
		var (
			cluster string
			width   int
		)
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if w+width > col {
			break
		}
		w += width
		offset += utf8.RuneCountInString(cluster)
	}
	return offset
}
