// Package roomcode generates the short codes players type to join a room.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Length is the number of characters in a room code.
const Length = 6

// Crockford's base32 alphabet, upper case. I, L, O and U are left out so
// codes survive being read aloud.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes from a RandSource. A nil source uses
// crypto/rand.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator with optional RandSource
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate returns a random code using crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a new code. Uniqueness is the caller's concern: the store
// rejects a code that is already taken.
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(Length)
	for range Length {
		b.WriteByte(alphabet[g.intn(len(alphabet))])
	}
	return b.String()
}

func (g *Generator) intn(n int) int {
	if g.randSource != nil {
		return g.randSource.IntN(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	return int(v.Int64())
}

// Normalize upper-cases a typed code and folds the characters Crockford
// treats as aliases: O reads as 0, I and L read as 1.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.Map(func(r rune) rune {
		switch r {
		case 'O':
			return '0'
		case 'I', 'L':
			return '1'
		case '-':
			return -1
		}
		return r
	}, code)
}

// Validate checks if a code is well formed. It expects a normalized code.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}
	for i, char := range code {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
