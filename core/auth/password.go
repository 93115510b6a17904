package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Password schemes. The legacy scheme is the contract the dashboard inherits:
// an unsalted, unkeyed sha256 hex digest over the raw password bytes. It is
// deterministic on purpose so existing flat user tables keep verifying.
// argon2id is the opt-in hardened scheme; enabling it is a deliberate
// deviation from the inherited digest contract.
const (
	SchemeSHA256Hex = "sha256-hex"
	SchemeArgon2id  = "argon2id"
)

const argon2Prefix = "argon2id$"

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// PasswordDigest computes the legacy deterministic digest: lowercase hex of
// SHA-256 over the raw UTF-8 password bytes.
func PasswordDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HashPassword produces the stored credential string for the given scheme.
func HashPassword(password, pepper, scheme string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeSHA256Hex:
		return PasswordDigest(password), nil
	case SchemeArgon2id:
		salt := make([]byte, argon2SaltLen)
		if _, err := rand.Read(salt); err != nil {
			return "", err
		}
		key := argon2.IDKey([]byte(password+pepper), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
		return argon2Prefix +
			base64.RawStdEncoding.EncodeToString(salt) + "$" +
			base64.RawStdEncoding.EncodeToString(key), nil
	default:
		return "", fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// VerifyPassword checks password against a stored credential, detecting the
// scheme from the stored format so mixed tables verify correctly.
func VerifyPassword(password, pepper, stored string) bool {
	if strings.HasPrefix(stored, argon2Prefix) {
		salt, key, err := parseArgon2(stored)
		if err != nil {
			return false
		}
		got := argon2.IDKey([]byte(password+pepper), salt, argon2Time, argon2Memory, argon2Threads, uint32(len(key)))
		return subtle.ConstantTimeCompare(got, key) == 1
	}
	digest := PasswordDigest(password)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
}

func parseArgon2(stored string) (salt, key []byte, err error) {
	parts := strings.Split(strings.TrimPrefix(stored, argon2Prefix), "$")
	if len(parts) != 2 {
		return nil, nil, errors.New("malformed argon2id credential")
	}
	salt, err = base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, err
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, err
	}
	if len(salt) == 0 || len(key) == 0 {
		return nil, nil, errors.New("malformed argon2id credential")
	}
	return salt, key, nil
}
