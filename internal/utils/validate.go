package util

import (
	"regexp"

	"noteshare/internal/utils/crypto"

	"github.com/go-playground/validator/v10"
)

// UsernameMaxLen is the longest username accepted at sign-up.
const UsernameMaxLen = 15

var reUsername = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// NewValidator returns a validator with the custom "password" and "username" tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return crypto.IsStrong(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsUsername(fl.Field().String())
	})
	return v
}

// IsUsername reports whether s is 1 to 15 letters, digits or underscores.
func IsUsername(s string) bool {
	return len(s) <= UsernameMaxLen && reUsername.MatchString(s)
}
