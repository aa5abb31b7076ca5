package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_BookingCode_Format(t *testing.T) {
	c := New()

	code, err := c.BookingCode("3f2a9b71-1c44-4f09-9d2e-0a8b6f1c2d3e")
	require.NoError(t, err)

	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "SB", parts[0])
	assert.Equal(t, "3F2A9B71", parts[1])
	assert.Len(t, parts[2], 4)
	for _, r := range parts[2] {
		assert.Contains(t, alphabet, string(r))
	}
}

func TestCodec_BookingCode_SuffixVaries(t *testing.T) {
	c := New()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := c.BookingCode("3f2a9b71-1c44-4f09-9d2e-0a8b6f1c2d3e")
		require.NoError(t, err)
		seen[code] = true
	}
	// 50 draws from a 30^4 suffix space should essentially never all collide.
	assert.Greater(t, len(seen), 1)
}

func TestCodec_CheckInTokens_DistinctAndFixedLength(t *testing.T) {
	c := New()

	tokens, err := c.CheckInTokens(7)
	require.NoError(t, err)
	require.Len(t, tokens, 7)

	seen := make(map[string]bool)
	for _, token := range tokens {
		assert.Len(t, token, 26)
		assert.False(t, seen[token], "token %q issued twice", token)
		seen[token] = true
	}
}

func TestCodec_CheckInTokens_FullAlphabetCoverage(t *testing.T) {
	c := New()

	counts := make(map[rune]int)
	for i := 0; i < 100; i++ {
		tokens, err := c.CheckInTokens(1)
		require.NoError(t, err)
		for _, r := range tokens[0] {
			counts[r]++
		}
	}

	// 2600 draws across a 30-character alphabet: every character shows up
	// unless some part of the range is being truncated or skewed away.
	for _, r := range alphabet {
		assert.Greater(t, counts[r], 0, "character %q never drawn", r)
	}
	assert.Len(t, counts, len(alphabet))
}

func TestCodec_CheckInTokens_Zero(t *testing.T) {
	c := New()

	tokens, err := c.CheckInTokens(0)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
