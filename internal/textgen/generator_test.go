package textgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stringlab/internal/models"
)

func TestGenerate_Alphabet(t *testing.T) {
	gen := NewGenerator(12345)

	tests := []struct {
		pattern string
		allowed string
	}{
		{models.PatternLower, lowerAlphabet},
		{models.PatternUpper, upperAlphabet},
		{models.PatternMixed, mixedAlphabet},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			s, err := gen.Generate(500, tt.pattern)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(s) != 500 {
				t.Errorf("expected length 500, got %d", len(s))
			}
			for i, r := range s {
				if !strings.ContainsRune(tt.allowed, r) {
					t.Fatalf("character %q at %d not in %s alphabet", r, i, tt.pattern)
				}
			}
		})
	}
}

func TestGenerate_MixedUsesBothCases(t *testing.T) {
	s, err := NewGenerator(42).Generate(1000, models.PatternMixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.ContainsAny(s, lowerAlphabet) || !strings.ContainsAny(s, upperAlphabet) {
		t.Errorf("expected both cases in mixed output, got %q", s[:50])
	}
}

func TestGenerate_Determinism(t *testing.T) {
	first, _ := NewGenerator(987654321).Generate(64, models.PatternMixed)
	second, _ := NewGenerator(987654321).Generate(64, models.PatternMixed)
	if first != second {
		t.Errorf("same seed produced different strings: %q vs %q", first, second)
	}

	other, _ := NewGenerator(123).Generate(64, models.PatternMixed)
	if other == first {
		t.Errorf("different seeds produced identical strings")
	}
}

func TestGenerate_ZeroSeed(t *testing.T) {
	s, err := NewGenerator(0).Generate(32, models.PatternLower)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == strings.Repeat("a", 32) {
		t.Errorf("zero seed got stuck: %q", s)
	}
}

func TestGenerate_Errors(t *testing.T) {
	gen := NewGenerator(1)

	if _, err := gen.Generate(-1, models.PatternLower); err == nil {
		t.Error("expected error for negative n")
	}

	s, err := gen.Generate(0, models.PatternLower)
	if err != nil || s != "" {
		t.Errorf("expected empty string, got %q (err %v)", s, err)
	}
}

func TestGenerate_UnknownPatternUsesMixed(t *testing.T) {
	s, err := NewGenerator(7).Generate(200, "digits")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 200 {
		t.Fatalf("expected length 200, got %d", len(s))
	}
	for i, r := range s {
		if !strings.ContainsRune(mixedAlphabet, r) {
			t.Fatalf("character %q at %d not in mixed alphabet", r, i)
		}
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	gen := NewTimeSeeded()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := gen.Generate(100, models.PatternUpper)
			if err != nil || len(s) != 100 {
				t.Errorf("bad concurrent result: len=%d err=%v", len(s), err)
			}
		}()
	}
	wg.Wait()
}

func TestXorshift64_Pure(t *testing.T) {
	if xorshift64(7) != xorshift64(7) {
		t.Error("xorshift64 must be deterministic")
	}
	if xorshift64(0) != 0 {
		t.Error("xorshift64 of zero should stay zero")
	}
}
