// Package pin generates and validates the short public identifiers that
// address rooms.
package pin

import (
	"math/rand"
	"strings"
)

// Alphabet drops characters that read ambiguously on a phone screen or when
// spoken aloud: no 0/O and no I/1 confusion (1 stays, I goes).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ123456789"

// Length of every PIN.
const Length = 4

// Generator mints room PINs from a caller-supplied random source. Collisions
// with existing rooms are not checked here; a PIN is a lookup key, not a
// secret, and create-room overwrites on the rare collision.
type Generator struct {
	r *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	return &Generator{r: rand.New(src)}
}

// Generate returns a Length-character PIN drawn uniformly from Alphabet.
func (g *Generator) Generate() string {
	p := make([]byte, Length)
	for i := range p {
		p[i] = Alphabet[g.r.Intn(len(Alphabet))]
	}
	return string(p)
}

// Normalize uppercases and trims a user-entered PIN so lookups are
// case-insensitive.
func Normalize(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}

// Valid reports whether p is a normalized, well-formed PIN.
func Valid(p string) bool {
	if len(p) != Length {
		return false
	}
	for i := 0; i < len(p); i++ {
		if !strings.ContainsRune(Alphabet, rune(p[i])) {
			return false
		}
	}
	return true
}
