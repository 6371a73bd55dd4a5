package security

import (
	"securemail/internal/models"

	"github.com/gofiber/fiber/v2"
)

// principalKey is the fiber locals key holding the authenticated *Principal.
const principalKey = "principal"

// UserContext exposes the caller of the current request.
type UserContext interface {
	// CurrentUser returns the authenticated user or nil.
	CurrentUser() *models.User
	// CurrentPrincipal returns the authenticated principal or nil.
	CurrentPrincipal() *Principal
}

// StubUserContext always answers with the same canned user.
type StubUserContext struct{}

// StubUser is the user returned by StubUserContext.
func StubUser() *models.User {
	return &models.User{
		ID:        1,
		Email:     "rob@example.org",
		Password:  "penguin",
		FirstName: "Rob",
		LastName:  "Winch",
	}
}

// CurrentUser returns StubUser.
func (StubUserContext) CurrentUser() *models.User { return StubUser() }

// CurrentPrincipal returns StubUser with its roles.
func (StubUserContext) CurrentPrincipal() *Principal { return NewPrincipal(StubUser()) }

// LocalsUserContext reads the principal the authentication middleware stored on the request.
type LocalsUserContext struct {
	c *fiber.Ctx
}

// FromFiber returns the live user context of c.
func FromFiber(c *fiber.Ctx) LocalsUserContext {
	return LocalsUserContext{c: c}
}

// CurrentPrincipal returns the principal stored by SetPrincipal, or nil.
func (u LocalsUserContext) CurrentPrincipal() *Principal {
	principal, _ := u.c.Locals(principalKey).(*Principal)
	return principal
}

// CurrentUser returns the user of CurrentPrincipal, or nil.
func (u LocalsUserContext) CurrentUser() *models.User {
	principal := u.CurrentPrincipal()
	if principal == nil {
		return nil
	}
	return principal.User
}

// SetPrincipal stores principal on the request for LocalsUserContext.
func SetPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}

// UserContextFunc yields the user context of a request.
type UserContextFunc func(c *fiber.Ctx) UserContext

// LiveUserContext reads the caller from the request locals.
func LiveUserContext(c *fiber.Ctx) UserContext { return FromFiber(c) }

// StubUserContextFunc ignores the request and answers with the stub user.
func StubUserContextFunc(*fiber.Ctx) UserContext { return StubUserContext{} }
