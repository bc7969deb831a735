// Package convert implements the case-conversion routines measured by the
// analysis service. Both algorithms produce identical output; they differ
// only in how they walk the input.
package convert

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/stringlab/internal/models"
)

// DefaultMaxDepth bounds the recursive algorithm: one frame per rune.
const DefaultMaxDepth = 1000

// overheadBytes approximates a string header in the memory estimate.
const overheadBytes = 56

// ErrRecursionDepth is returned when the recursive algorithm would need more
// frames than allowed.
var ErrRecursionDepth = errors.New("recursion depth exceeded")

// ErrUnknownAlgorithm is returned for algorithms other than iterative and recursive
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Converter runs a conversion with a bounded recursion depth.
type Converter struct {
	MaxDepth int
}

// New returns a converter. maxDepth <= 0 selects DefaultMaxDepth.
func New(maxDepth int) *Converter {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Converter{MaxDepth: maxDepth}
}

// Mapping returns the per-rune transformation for a pattern and direction.
// Lower strings are upper-cased, upper strings lower-cased, and mixed strings
// follow the direction. Anything else maps runes to themselves.
func Mapping(pattern, direction string) func(rune) rune {
	switch pattern {
	case models.PatternLower:
		return unicode.ToUpper
	case models.PatternUpper:
		return unicode.ToLower
	case models.PatternMixed:
		switch direction {
		case models.DirectionToUpper:
			return unicode.ToUpper
		case models.DirectionToLower:
			return unicode.ToLower
		case models.DirectionSwap:
			return swapCase
		}
	}
	return identity
}

// Convert applies the algorithm to text.
func (c *Converter) Convert(algorithm, text, pattern, direction string) (string, error) {
	fn := Mapping(pattern, direction)

	switch algorithm {
	case models.AlgorithmIterative:
		return Iterative(text, fn), nil
	case models.AlgorithmRecursive:
		return Recursive(text, fn, c.MaxDepth)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// Iterative converts text with a single loop over its runes.
func Iterative(text string, fn func(rune) rune) string {
	runes := []rune(text)
	for i, r := range runes {
		runes[i] = fn(r)
	}
	return string(runes)
}

// Recursive converts text one rune per call frame. It fails before doing
// any work when the input needs more than maxDepth frames.
func Recursive(text string, fn func(rune) rune, maxDepth int) (string, error) {
	runes := []rune(text)
	if len(runes) > maxDepth {
		return "", fmt.Errorf("%w: %d characters exceeds limit of %d", ErrRecursionDepth, len(runes), maxDepth)
	}
	convertFrom(runes, 0, fn)
	return string(runes), nil
}

func convertFrom(runes []rune, i int, fn func(rune) rune) {
	if i >= len(runes) {
		return
	}
	runes[i] = fn(runes[i])
	convertFrom(runes, i+1, fn)
}

// MemoryUsageKB estimates the memory held by a result string in kilobytes.
func MemoryUsageKB(s string) float64 {
	return float64(len(s)+overheadBytes) / 1024
}

// Length returns the character count of s.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

func swapCase(r rune) rune {
	switch {
	case unicode.IsUpper(r):
		return unicode.ToLower(r)
	case unicode.IsLower(r):
		return unicode.ToUpper(r)
	default:
		return r
	}
}

func identity(r rune) rune { return r }
