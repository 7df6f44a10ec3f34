package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	verificationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"
	verificationLength   = 4
)

// NewVerificationCode returns a short random code for out-of-band email
// confirmation. Codes are never persisted server-side; the client round-trips
// the code back for confirmation.
func NewVerificationCode() (string, error) {
	code := make([]byte, verificationLength)
	max := big.NewInt(int64(len(verificationAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		code[i] = verificationAlphabet[n.Int64()]
	}
	return string(code), nil
}
