package security

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptPrefix = "{bcrypt}"

// PasswordsMatch compares a submitted password with the stored value.
// Stored values carrying the {bcrypt} prefix are bcrypt hashes; anything else is
// plain text and must match exactly.
func PasswordsMatch(stored, submitted string) bool {
	if hash, ok := strings.CutPrefix(stored, bcryptPrefix); ok {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(submitted)) == nil
	}
	return stored == submitted
}

// EncodePassword prepares a new password for storage. "plain" stores it unchanged,
// "bcrypt" stores a prefixed bcrypt hash.
func EncodePassword(encoding, raw string) (string, error) {
	switch encoding {
	case "", "plain":
		return raw, nil
	case "bcrypt":
		hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return bcryptPrefix + string(hash), nil
	default:
		return "", fmt.Errorf("unsupported password encoding %q", encoding)
	}
}
