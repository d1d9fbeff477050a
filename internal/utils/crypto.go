// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

// storage keys are lowercase, so tokens embedded in them are too
const lowerCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomToken returns a lowercase alphanumeric token for generated file names.
// If the system random source fails it degrades to a fixed pattern; uniqueness of
// file names then rests on the millisecond timestamp alone.
func RandomToken(length int) string {
	s, err := randomFromCharset(lowerCharset, length)
	if err != nil {
		b := make([]byte, length)
		for i := range b {
			b[i] = lowerCharset[i%len(lowerCharset)]
		}
		return string(b)
	}
	return s
}

func randomFromCharset(charset string, length int) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}
