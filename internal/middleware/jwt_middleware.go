package middleware

import (
	"errors"
	"strings"

	"securemail/internal/errs"
	"securemail/internal/security"
	"securemail/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionIDKey is the fiber locals key holding the session id of an authenticated request.
const SessionIDKey = "session_id"

// AuthRequired is a Fiber middleware that resolves the bearer token to a live session and
// stores its principal on the request.
func AuthRequired(authService *services.AuthService, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		principal, sessionID, err := authService.Resolve(c.UserContext(), parts[1])
		if err != nil {
			logger.Debug("authentication failed", zap.Error(err))
			switch {
			case errors.Is(err, errs.ErrSessionExpired):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Session has expired",
				})
			case errors.Is(err, errs.ErrUnauthorized):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid or expired token",
				})
			default:
				logger.Error("failed to resolve session", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Could not authenticate request",
				})
			}
		}

		security.SetPrincipal(c, principal)
		c.Locals(SessionIDKey, sessionID)
		return c.Next()
	}
}

// RoleRequired rejects callers that were not granted role.
func RoleRequired(userContext security.UserContextFunc, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := userContext(c).CurrentPrincipal()
		if principal == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication is required",
			})
		}
		if !principal.HasRole(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access is denied",
			})
		}
		return c.Next()
	}
}

// AdminRequired is RoleRequired for security.RoleAdmin.
func AdminRequired(userContext security.UserContextFunc) fiber.Handler {
	return RoleRequired(userContext, security.RoleAdmin)
}

// StubAuth authenticates every request as the canned stub user.
func StubAuth() fiber.Handler {
	stub := security.StubUserContext{}
	return func(c *fiber.Ctx) error {
		security.SetPrincipal(c, stub.CurrentPrincipal())
		return c.Next()
	}
}
