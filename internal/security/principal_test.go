package security_test

import (
	"testing"

	"securemail/internal/models"
	"securemail/internal/security"

	"github.com/stretchr/testify/assert"
)

func TestRolesFor(t *testing.T) {
	assert.Equal(t, []string{security.RoleUser, security.RoleAdmin}, security.RolesFor("luke@example.com"))
	assert.Equal(t, []string{security.RoleUser}, security.RolesFor("rob@example.org"))
	assert.Equal(t, []string{security.RoleUser}, security.RolesFor("Luke@example.com"))
	assert.Equal(t, []string{security.RoleUser}, security.RolesFor(""))
}

func TestNewPrincipal(t *testing.T) {
	luke := security.NewPrincipal(&models.User{ID: 2, Email: "luke@example.com"})
	assert.True(t, luke.IsAdmin())
	assert.True(t, luke.HasRole(security.RoleUser))

	rob := security.NewPrincipal(&models.User{ID: 1, Email: "rob@example.org"})
	assert.False(t, rob.IsAdmin())
	assert.True(t, rob.HasRole(security.RoleUser))

	assert.Nil(t, security.NewPrincipal(nil))

	var none *security.Principal
	assert.False(t, none.IsAdmin())
}
