package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost the mobile client's accounts were
// originally hashed with; raising it would still verify old hashes.
const DefaultBcryptCost = 10

// ErrMalformedHash reports a stored hash that bcrypt cannot parse, as opposed
// to a plain mismatch.
var ErrMalformedHash = errors.New("malformed password hash")

func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword returns (false, nil) on a mismatch and an error only when the
// stored hash itself is unusable.
func VerifyPassword(password string, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
