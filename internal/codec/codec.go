// Package codec generates the attendance artifacts for a booking: the
// shareable booking code and the single-use check-in tokens.
package codec

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// alphabet leaves out 0/O, 1/I/L and U so codes survive being read aloud or
// written down.
const alphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

const (
	codePrefixLen = 8
	codeSuffixLen = 4
	tokenLen      = 26
)

type Codec struct{}

func New() *Codec {
	return &Codec{}
}

// BookingCode derives a human-readable code from the booking id plus a short
// random suffix. The deterministic prefix keeps the code traceable to the
// booking; the suffix is regenerated when the persistence layer reports a
// collision within the experience.
func (c *Codec) BookingCode(bookingID string) (string, error) {
	prefix := strings.ToUpper(strings.ReplaceAll(bookingID, "-", ""))
	if len(prefix) > codePrefixLen {
		prefix = prefix[:codePrefixLen]
	}
	suffix, err := randomString(codeSuffixLen)
	if err != nil {
		return "", fmt.Errorf("generate code suffix: %w", err)
	}
	return fmt.Sprintf("SB-%s-%s", prefix, suffix), nil
}

// CheckInTokens returns n independent unguessable tokens, one per seat.
func (c *Codec) CheckInTokens(n int) ([]string, error) {
	tokens := make([]string, 0, n)
	for i := 0; i < n; i++ {
		token, err := randomString(tokenLen)
		if err != nil {
			return nil, fmt.Errorf("generate check-in token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func randomString(n int) (string, error) {
	// Reject bytes at or above the largest multiple of the alphabet size,
	// otherwise the modulo would favour the first characters.
	const limit = byte(256 - 256%len(alphabet))
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
