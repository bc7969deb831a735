package textgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/stringlab/internal/models"
)

const (
	lowerAlphabet = "abcdefghijklmnopqrstuvwxyz"
	upperAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	mixedAlphabet = upperAlphabet + lowerAlphabet
)

// fallbackSeed replaces a zero seed; xorshift never leaves the zero state.
const fallbackSeed uint64 = 0x9E3779B97F4A7C15

// Generator produces pseudo-random strings from a pattern alphabet.
// It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	state uint64
}

// NewGenerator creates a generator with a fixed seed.
// Same seed → same sequence of strings.
func NewGenerator(seed int64) *Generator {
	state := uint64(seed)
	if state == 0 {
		state = fallbackSeed
	}
	return &Generator{state: state}
}

// NewTimeSeeded creates a generator seeded from the wall clock
func NewTimeSeeded() *Generator {
	return NewGenerator(time.Now().UnixNano())
}

// Alphabet returns the characters a pattern draws from.
// Patterns other than lower and upper draw from the mixed alphabet.
func Alphabet(pattern string) string {
	switch pattern {
	case models.PatternLower:
		return lowerAlphabet
	case models.PatternUpper:
		return upperAlphabet
	default:
		return mixedAlphabet
	}
}

// Generate returns n characters drawn uniformly from the pattern alphabet.
func (g *Generator) Generate(n int, pattern string) (string, error) {
	alphabet := Alphabet(pattern)
	if n < 0 {
		return "", fmt.Errorf("n must not be negative")
	}

	out := make([]byte, n)
	size := uint64(len(alphabet))

	g.mu.Lock()
	for i := range out {
		g.state = xorshift64(g.state)
		out[i] = alphabet[g.state%size]
	}
	g.mu.Unlock()

	return string(out), nil
}

// xorshift64 implements a 64-bit xorshift PRNG step.
// Same input → same output.
func xorshift64(state uint64) uint64 {
	state ^= state << 13
	state ^= state >> 7
	state ^= state << 17
	return state
}
