package handlers

import (
	"securemail/internal/security"

	"github.com/gofiber/fiber/v2"
)

// DefaultHandler picks the landing page of the caller.
type DefaultHandler struct {
	userContext security.UserContextFunc
}

// NewDefaultHandler creates a new DefaultHandler.
func NewDefaultHandler(userContext security.UserContextFunc) *DefaultHandler {
	return &DefaultHandler{userContext: userContext}
}

// RegisterRoutes registers the landing route.
func (h *DefaultHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/default", h.HandleDefault)
}

// HandleDefault redirects administrators to the session overview and everyone else to the inbox.
func (h *DefaultHandler) HandleDefault(c *fiber.Ctx) error {
	if h.userContext(c).CurrentPrincipal().IsAdmin() {
		return c.Redirect(APIPrefix + "/users/sessions")
	}
	return c.Redirect(APIPrefix + "/messages/inbox")
}
