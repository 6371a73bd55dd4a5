package handlers

import (
	"fmt"

	"securemail/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SessionHandler serves the administrative session views.
type SessionHandler struct {
	service *services.SessionService
	logger  *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *services.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{service: service, logger: logger}
}

// RegisterRoutes registers the session routes behind guard.
func (h *SessionHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Get("/users/sessions", guard, h.HandlePrincipals)
	router.Get("/users/:userId/sessions", guard, h.HandleUserSessions)
	router.Delete("/sessions/:sessionId", guard, h.HandleExpire)
}

// HandlePrincipals lists every user with a live session.
func (h *SessionHandler) HandlePrincipals(c *fiber.Ctx) error {
	principals, err := h.service.Principals(c.UserContext())
	if err != nil {
		h.logger.Error("failed to list principals", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve sessions",
		})
	}
	return c.JSON(principals)
}

// HandleUserSessions lists the live sessions of one user.
func (h *SessionHandler) HandleUserSessions(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user ID",
		})
	}

	user, infos, err := h.service.SessionsForUser(c.UserContext(), int64(userID))
	if err != nil {
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			h.logger.Error("failed to list user sessions", zap.Int("userID", userID), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"message": fmt.Sprintf("No sessions found for user %d", userID),
		})
	}
	return c.JSON(fiber.Map{
		"user":     user,
		"sessions": infos,
	})
}

// HandleExpire forces a session to expire.
func (h *SessionHandler) HandleExpire(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if err := h.service.Expire(c.UserContext(), sessionID); err != nil {
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			h.logger.Error("failed to expire session", zap.String("sessionID", sessionID), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"message": fmt.Sprintf("Session %s could not be expired", sessionID),
		})
	}
	h.logger.Info("session expired by administrator", zap.String("sessionID", sessionID))
	return c.JSON(fiber.Map{
		"message": "Session expired",
	})
}
