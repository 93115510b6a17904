package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"
)

func NowUTC() time.Time {
	return time.Now().UTC()
}

// RandString returns n bytes of entropy as a 2n-character hex string.
func RandString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

var usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is empty")
	}
	if !utf8.ValidString(username) || !usernameRe.MatchString(username) {
		return errors.New("username must be lowercase letters, digits, '.', '_' or '-'")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 256 {
		return errors.New("password too long")
	}
	return nil
}
