// Package payload generates fixed-size pseudo-random message bodies for
// load testing. Bodies are built from a fixed alphanumeric alphabet so they
// compress and display predictably across brokers.
package payload

import (
	"math/rand"
	"time"
)

// Alphabet is the set of characters payloads are drawn from.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator produces random alphanumeric payloads from its own seeded
// source. The zero value is not usable; use NewGenerator.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded from the current time.
func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededGenerator returns a Generator with a fixed seed, for
// reproducible runs.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Random returns exactly n alphanumeric bytes. It repeatedly shuffles a
// copy of the alphabet and appends the shuffled run, truncating the final
// run to hit the target length. n <= 0 yields an empty slice.
func (g *Generator) Random(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	out := make([]byte, 0, n)
	source := []byte(Alphabet)
	for len(out) < n {
		g.rng.Shuffle(len(source), func(i, j int) {
			source[i], source[j] = source[j], source[i]
		})
		delta := n - len(out)
		if delta > len(source) {
			delta = len(source)
		}
		out = append(out, source[:delta]...)
	}
	return out
}

// Random is a convenience wrapper around a freshly seeded Generator.
func Random(n int) []byte {
	return NewGenerator().Random(n)
}
