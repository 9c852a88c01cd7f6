package utils

import (
	"crypto/rand"
	"math/big"
)

// GenerateRandomToken returns a random alphanumeric string, e.g. a reset code.
func GenerateRandomToken(length int) (string, error) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	token := make([]byte, length)
	for i := range token {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		token[i] = charset[n.Int64()]
	}
	return string(token), nil
}
