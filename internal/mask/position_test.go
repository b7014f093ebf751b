package mask

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOffsetBefore(t *testing.T) {
	tokens := phoneTokens()
	tests := []struct {
		position int
		want     int
	}{
		{0, 0},
		{1, 4},
		{4, 4},
		{7, 4},
		{8, 6},
		{12, 6},
		{13, 7},
		{16, 8},
		{18, 8},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, OffsetBefore(tt.position, tokens), "position %d", tt.position)
	}
}

func TestStripTokens_CanonicalValue(t *testing.T) {
	tokens := phoneTokens()
	require.Equal(t, "9041487623", StripTokens("+7 (904)-148-76-23", tokens, 0))
	require.Equal(t, "904", StripTokens("+7 (904)-", tokens, 0))
	require.Equal(t, "", StripTokens("+7 (", tokens, 0))
}

func TestStripTokens_Fragment(t *testing.T) {
	tokens := phoneTokens()
	// ")-" lands at offset 7 when the fragment is placed at 6.
	require.Equal(t, "481", StripTokens("4)-81", tokens, 6))
	// A fragment too short to reach the next token is unchanged.
	require.Equal(t, "9", StripTokens("9", tokens, 4))
}

func TestStripTokens_MissingLiteralLeftAlone(t *testing.T) {
	require.Equal(t, "9041487623", StripTokens("9041487623", phoneTokens(), 0))
}

func TestStripTokens_NoTokens(t *testing.T) {
	require.Equal(t, "abc", StripTokens("abc", nil, 0))
}
