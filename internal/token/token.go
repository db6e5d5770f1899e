// Package token generates single-use subscription confirmation tokens.
package token

import (
	"crypto/rand"
	"fmt"
)

// Length is the fixed size of every confirmation token.
const Length = 25

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxUnbiased is the largest byte value usable without modulo bias:
// 62 symbols * 4 = 248 values map evenly onto the alphabet.
const maxUnbiased = byte(len(alphabet) * (256 / len(alphabet)))

// New returns a 25-character token drawn uniformly from the alphanumeric
// alphabet using crypto/rand. Collisions across outstanding tokens are
// treated as negligible and are not checked against the store.
func New() (string, error) {
	out := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(out) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}
