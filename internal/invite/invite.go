// Package invite generates and normalizes couple invite codes.
//
// A code is 8 to 10 characters drawn from an alphabet without look-alike
// glyphs (no I, O, 0 or 1). Codes of 8 or 9 characters may carry one hyphen
// after the fourth character for readability; the hyphen is part of the code.
package invite

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the set of characters an invite code is drawn from.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	minChars    = 8
	maxChars    = 10
	hyphenIndex = 4
)

var pattern = regexp.MustCompile(`^[A-Z2-9]{4}-?[A-Z2-9]{4,6}$`)

// CodeGenerator produces fresh invite codes. Services depend on this
// interface so tests can force collisions.
type CodeGenerator interface {
	Generate() (string, error)
}

// Generator is the production CodeGenerator backed by crypto/rand.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a new random invite code.
func (Generator) Generate() (string, error) {
	extra, err := randInt(maxChars - minChars + 1)
	if err != nil {
		return "", fmt.Errorf("invite.Generate: %w", err)
	}
	n := minChars + extra

	body, err := gonanoid.Generate(Alphabet, int(n))
	if err != nil {
		return "", fmt.Errorf("invite.Generate: %w", err)
	}

	// A hyphen would push a 10 character body past the maximum length.
	if n < maxChars {
		coin, err := randInt(2)
		if err != nil {
			return "", fmt.Errorf("invite.Generate: %w", err)
		}
		if coin == 1 {
			body = body[:hyphenIndex] + "-" + body[hyphenIndex:]
		}
	}
	return body, nil
}

// Normalize cleans up a code typed by a human: surrounding whitespace is
// trimmed and letters are upper-cased. It does not validate.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Valid reports whether code has the shape of an invite code.
func Valid(code string) bool {
	return len(code) >= minChars && len(code) <= maxChars && pattern.MatchString(code)
}

func randInt(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}
