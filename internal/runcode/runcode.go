package runcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet is Crockford base32: no I, L, O or U.
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	MinLength = 4
	MaxLength = 12
)

// Generate returns a random join code of the given length.
func Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("run code length %d outside %d..%d", length, MinLength, MaxLength)
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	// 256 is a multiple of 32, so the modulo is unbiased.
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

// Normalize upper-cases and trims a code typed by a student.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
