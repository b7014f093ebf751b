package mask

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		r    rune
		want Class
	}{
		{'0', ClassDigit},
		{'9', ClassDigit},
		{'٣', ClassDigit}, // Arabic-Indic three
		{'a', ClassWord},
		{'Z', ClassWord},
		{'_', ClassWord},
		{'é', ClassWord},
		{'ж', ClassWord},
		{'-', ClassOther},
		{' ', ClassOther},
		{'(', ClassOther},
		{'+', ClassOther},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Classify(tt.r), "rune %q", tt.r)
	}
}

func TestSameClass(t *testing.T) {
	require.True(t, SameClass('1', '9'))
	require.True(t, SameClass('a', 'Q'))
	require.True(t, SameClass(')', '-'))
	require.False(t, SameClass('1', 'a'), "digits are reported as digits before words")
	require.False(t, SameClass('a', '-'))
}

func TestClassString(t *testing.T) {
	require.Equal(t, "digit", ClassDigit.String())
	require.Equal(t, "word", ClassWord.String())
	require.Equal(t, "other", ClassOther.String())
}
