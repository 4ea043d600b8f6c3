package utils

import (
	"crypto/rand"
	"math/big"
)

// CodeAlphabet is the reduced character set ticket codes are drawn from.
// Glyphs that are easy to confuse when handwritten are excluded: 0/O, 1/I/L,
// and D (reads as 0), plus the digits that resemble letters already present.
const CodeAlphabet = "CEFHJKMNPQRTUVWXY379"

// CodeLength is the number of characters in a ticket code.  20^5 distinct
// codes keep collisions rare while staying short enough to write on a skate
// tag.
const CodeLength = 5

// GenerateTicketCode returns a random code over CodeAlphabet.  Uniqueness
// is not guaranteed here; the caller must verify against the store and
// retry on collision.
func GenerateTicketCode() (string, error) {
	return GenerateCode(CodeAlphabet, CodeLength)
}

// GenerateCode draws length characters from alphabet using crypto/rand.
func GenerateCode(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}
