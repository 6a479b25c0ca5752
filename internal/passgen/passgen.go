// Package passgen suggests strong random passwords.
package passgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	Uppercase    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase    = "abcdefghijklmnopqrstuvwxyz"
	Numbers      = "0123456789"
	SpecialChars = "!@#$%^&*()-_=+[]{}|;:,.<>?"

	// MinLength leaves room for one character of every class
	MinLength     = 4
	DefaultLength = 14
)

var classes = []string{Uppercase, Lowercase, Numbers, SpecialChars}

// Suggest returns a password of the given length containing at least one
// uppercase letter, lowercase letter, digit, and special character.
func Suggest(length int) (string, error) {
	if length < MinLength {
		return "", fmt.Errorf("password length must be at least %d, got %d", MinLength, length)
	}

	all := Uppercase + Lowercase + Numbers + SpecialChars
	password := make([]byte, 0, length)

	for _, class := range classes {
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}
	for len(password) < length {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	// Fisher-Yates so the guaranteed characters are not always first
	for i := len(password) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random index: %w", err)
	}
	return int(v.Int64()), nil
}
