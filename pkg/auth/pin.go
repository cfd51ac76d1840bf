package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	pinMinDigits = 4
	pinMaxDigits = 8
)

// HashPIN returns a bcrypt hash of the staff login PIN.
func HashPIN(pin string) (string, error) {
	if err := validatePIN(pin); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing pin: %w", err)
	}
	return string(hashed), nil
}

// VerifyPIN reports whether the PIN matches the stored hash.
func VerifyPIN(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

func validatePIN(pin string) error {
	pin = strings.TrimSpace(pin)
	if len(pin) < pinMinDigits || len(pin) > pinMaxDigits {
		return fmt.Errorf("pin must be %d to %d digits", pinMinDigits, pinMaxDigits)
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("pin must contain digits only")
		}
	}
	return nil
}
