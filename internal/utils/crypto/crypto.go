package crypto

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

var (
	reUpper = regexp.MustCompile(`[A-Z]`)
	reLower = regexp.MustCompile(`[a-z]`)
	reDigit = regexp.MustCompile(`[0-9]`)
)

// HashPassword hashes a password using bcrypt with the given cost
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against its hash
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IsStrong checks if a password meets minimum strength requirements:
// at least 8 characters with an upper case letter, a lower case letter and a digit.
func IsStrong(password string) bool {
	if len(password) < 8 || len(password) > 72 {
		return false
	}
	return reUpper.MatchString(password) && reLower.MatchString(password) && reDigit.MatchString(password)
}
