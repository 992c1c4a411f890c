package payload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomLength(t *testing.T) {
	g := NewGenerator()
	for _, n := range []int{0, 1, 10, 61, 62, 63, 1000, 4096} {
		assert.Len(t, g.Random(n), n)
	}
}

func TestRandomNegativeLength(t *testing.T) {
	assert.Empty(t, NewGenerator().Random(-5))
}

func TestRandomAlphabetOnly(t *testing.T) {
	body := NewGenerator().Random(4096)
	for _, b := range body {
		require.True(t, strings.ContainsRune(Alphabet, rune(b)),
			"unexpected byte %q in payload", b)
	}
}

func TestRandomShape(t *testing.T) {
	// Same length twice yields equal-length but (with overwhelming
	// probability) different content.
	g := NewGenerator()
	a := g.Random(256)
	b := g.Random(256)
	require.Len(t, a, 256)
	require.Len(t, b, 256)
	assert.NotEqual(t, a, b)
}

func TestSeededGeneratorReproducible(t *testing.T) {
	a := NewSeededGenerator(42).Random(128)
	b := NewSeededGenerator(42).Random(128)
	assert.Equal(t, a, b)
}

func TestRandomNoRepeatWithinShuffleRun(t *testing.T) {
	// Each 62-byte run is a permutation of the alphabet, so the first 62
	// bytes contain no duplicates.
	body := NewGenerator().Random(len(Alphabet))
	seen := make(map[byte]bool, len(body))
	for _, b := range body {
		require.False(t, seen[b], "byte %q repeated within one shuffle run", b)
		seen[b] = true
	}
}
