package auth

import (
	"errors"
	"unicode/utf8"
)

const (
	MaxUsernameBytes = 128
	// bcrypt rejects input past 72 bytes.
	MaxPasswordBytes = 72
)

// ValidateCredentials applies the registration rules for a username and
// password. Usernames are taken as given: no trimming or case folding.
func ValidateCredentials(username, password string) error {
	if username == "" || !utf8.ValidString(username) || len(username) > MaxUsernameBytes {
		return ErrInvalidUsername
	}
	if password == "" || len(password) > MaxPasswordBytes {
		return ErrInvalidPassword
	}
	return nil
}

var ErrInvalidPassword = errors.New("password format is invalid")
