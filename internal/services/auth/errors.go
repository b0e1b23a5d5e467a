package auth

import "errors"

// ErrGenAccessToken is returned when we cannot create a JWT.
var ErrGenAccessToken = errors.New("failed to generate access token")

// ErrDuplicate is returned when the email or username is already taken.
var ErrDuplicate = errors.New("user with this email or username already exists")

// ErrUserNotFound is returned by repositories when no user matches.
var ErrUserNotFound = errors.New("user not found")

// ErrRegistrationFailed hides whether sign-up failed on a duplicate.
var ErrRegistrationFailed = errors.New("registration failed")

// ErrInvalidCredentials is returned for any failed sign-in.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrIncorrectPassword is returned when a profile change fails the password re-check.
var ErrIncorrectPassword = errors.New("incorrect password, changes not saved")

// ErrUpdateProfile is returned when a profile cannot be saved.
var ErrUpdateProfile = errors.New("failed to update profile")
