// Package security holds the authentication and authorization rules of the mail service:
// principals and their roles, credential checking, the message access policy and the
// accessors that expose the current caller.
package security

import "securemail/internal/models"

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"

	// adminEmail is the one account granted RoleAdmin.
	adminEmail = "luke@example.com"
)

// Principal is an authenticated caller: the directory user plus the roles granted at login.
type Principal struct {
	User  *models.User `json:"user"`
	Roles []string     `json:"roles"`
}

// NewPrincipal wraps user with the roles RolesFor assigns to it.
func NewPrincipal(user *models.User) *Principal {
	if user == nil {
		return nil
	}
	return &Principal{User: user, Roles: RolesFor(user.Email)}
}

// RolesFor returns the roles granted to the account with email.
func RolesFor(email string) []string {
	if email == adminEmail {
		return []string{RoleUser, RoleAdmin}
	}
	return []string{RoleUser}
}

// HasRole reports whether the principal was granted role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(RoleAdmin).
func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
