package otpgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixASCIIDigits(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := Generate()
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9', "code %q contains non-digit %q", code, c)
		}
	}
}

func TestGenerate_SpansFullRange(t *testing.T) {
	// Across a large sample every leading digit 1-9 should appear, so no
	// fixed prefix bias exists, and all values stay inside [100000, 999999].
	seenFirst := map[byte]bool{}
	for i := 0; i < 10000; i++ {
		code := Generate()
		require.Len(t, code, 6)
		require.NotEqual(t, byte('0'), code[0], "code %q has a leading zero", code)
		seenFirst[code[0]] = true
	}
	for d := byte('1'); d <= '9'; d++ {
		assert.True(t, seenFirst[d], "leading digit %q never generated in 10k draws", d)
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[Generate()] = true
	}
	assert.Greater(t, len(seen), 1, "generator returned a constant code")
}
