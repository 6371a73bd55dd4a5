package handlers

import (
	"errors"
	"fmt"

	"securemail/internal/errs"
	"securemail/internal/middleware"
	"securemail/internal/models"
	"securemail/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		logger:      logger,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers the routes that need an authenticated caller.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Post("/auth/logout", h.HandleLogout)
}

// HandleSignup creates a user and logs it in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var form models.SignupForm
	if err := c.BodyParser(&form); err != nil {
		h.logger.Debug("failed to parse signup body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(form); err != nil {
		return validationFailed(c, err)
	}

	token, user, err := h.authService.Signup(c.UserContext(), form)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return fieldError(c, fiber.StatusConflict, "email", fmt.Sprintf("A user with email %s already exists.", form.Email))
		}
		h.logger.Error("failed to sign up user", zap.String("email", form.Email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// HandleLogin checks credentials and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse login body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, _, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrBadCredentials) {
			h.logger.Info("login rejected", zap.String("username", req.Username))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication failed",
			})
		}
		h.logger.Error("login failed", zap.String("username", req.Username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log in",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleLogout ends the session of the current token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sessionID, _ := c.Locals(middleware.SessionIDKey).(string)
	if sessionID == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := h.authService.Logout(c.UserContext(), sessionID); err != nil {
		h.logger.Error("failed to log out", zap.String("sessionID", sessionID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not log out",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
