package pin

import (
	"math/rand"
	"strings"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	g := NewGenerator(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		p := g.Generate()
		if len(p) != Length {
			t.Fatalf("wrong length: expected %d got %d (%q)", Length, len(p), p)
		}
		for _, c := range p {
			if !strings.ContainsRune(Alphabet, c) {
				t.Fatalf("pin %q contains %q, not in alphabet", p, c)
			}
		}
	}
}

func TestGenerateDeterministicForSource(t *testing.T) {
	a := NewGenerator(rand.NewSource(42))
	b := NewGenerator(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		if pa, pb := a.Generate(), b.Generate(); pa != pb {
			t.Fatalf("same source diverged at %d: %q vs %q", i, pa, pb)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  ab3x "); got != "AB3X" {
		t.Errorf("expected AB3X, got %q", got)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		pin  string
		want bool
	}{
		{"AB3X", true},
		{"ABCD", true},
		{"1234", true},
		{"ab3x", false}, // not normalized
		{"AB0X", false}, // 0 is excluded as confusable
		{"ABIX", false}, // I is excluded as confusable
		{"ABOX", false}, // O is excluded as confusable
		{"ABC", false},
		{"ABCDE", false},
		{"AB-X", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.pin); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.pin, got, tt.want)
		}
	}
}
