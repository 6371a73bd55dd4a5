package security_test

import (
	"strings"
	"testing"

	"securemail/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordsMatch_PlainText(t *testing.T) {
	assert.True(t, security.PasswordsMatch("penguin", "penguin"))
	assert.False(t, security.PasswordsMatch("penguin", "Penguin"))
	assert.False(t, security.PasswordsMatch("penguin", "penguin "))
	assert.False(t, security.PasswordsMatch("penguin", ""))
}

func TestEncodePassword(t *testing.T) {
	plain, err := security.EncodePassword("plain", "lion")
	require.NoError(t, err)
	assert.Equal(t, "lion", plain)

	hashed, err := security.EncodePassword("bcrypt", "lion")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "{bcrypt}"))
	assert.True(t, security.PasswordsMatch(hashed, "lion"))
	assert.False(t, security.PasswordsMatch(hashed, "tiger"))

	_, err = security.EncodePassword("rot13", "lion")
	assert.Error(t, err)
}
