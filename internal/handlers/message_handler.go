package handlers

import (
	"errors"
	"fmt"

	"securemail/internal/errs"
	"securemail/internal/models"
	"securemail/internal/security"
	"securemail/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MessageHandler handles HTTP requests for messages.
type MessageHandler struct {
	service     *services.MessageService
	userContext security.UserContextFunc
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service *services.MessageService, userContext security.UserContextFunc, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		service:     service,
		userContext: userContext,
		validate:    newValidator(),
		logger:      logger,
	}
}

// RegisterRoutes registers the message routes with the Fiber app.
func (h *MessageHandler) RegisterRoutes(router fiber.Router) {
	messageRoutes := router.Group("/messages")
	messageRoutes.Get("/", h.HandleIndex)
	messageRoutes.Get("/inbox", h.HandleInbox)
	messageRoutes.Get("/sent", h.HandleSent)
	messageRoutes.Get("/:id", h.HandleShow)
	messageRoutes.Post("/", h.HandleCompose)
}

// HandleIndex sends the caller to the inbox.
func (h *MessageHandler) HandleIndex(c *fiber.Ctx) error {
	return c.Redirect(APIPrefix + "/messages/inbox")
}

// HandleInbox lists the messages received by the caller.
func (h *MessageHandler) HandleInbox(c *fiber.Ctx) error {
	user := h.userContext(c).CurrentUser()
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication is required"})
	}
	messages, err := h.service.Inbox(c.UserContext(), user.ID)
	if err != nil {
		h.logger.Error("failed to list inbox", zap.Int64("userID", user.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve messages",
		})
	}
	return c.JSON(messages)
}

// HandleSent lists the messages sent by the caller.
func (h *MessageHandler) HandleSent(c *fiber.Ctx) error {
	user := h.userContext(c).CurrentUser()
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication is required"})
	}
	messages, err := h.service.Sent(c.UserContext(), user.ID)
	if err != nil {
		h.logger.Error("failed to list sent messages", zap.Int64("userID", user.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve messages",
		})
	}
	return c.JSON(messages)
}

// HandleShow retrieves a single message the caller is allowed to see.
// A missing id answers 404 and someone else's message answers 403, so message ids are
// observable; they are sequential and carry no content. The 403 body never includes the message.
func (h *MessageHandler) HandleShow(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid message ID",
		})
	}

	principal := h.userContext(c).CurrentPrincipal()
	message, err := h.service.Show(c.UserContext(), int64(id), principal)
	if err != nil {
		switch status := statusFor(err); status {
		case fiber.StatusNotFound:
			return c.Status(status).JSON(fiber.Map{
				"message": fmt.Sprintf("Message with ID %d not found", id),
			})
		case fiber.StatusForbidden:
			h.logger.Info("message access denied", zap.Int("messageID", id))
			return c.Status(status).JSON(fiber.Map{
				"message": "Access is denied",
			})
		default:
			h.logger.Error("failed to show message", zap.Int("messageID", id), zap.Error(err))
			return c.Status(status).JSON(fiber.Map{
				"message": "Could not retrieve message",
			})
		}
	}
	return c.JSON(message)
}

// HandleCompose sends a new message from the caller.
func (h *MessageHandler) HandleCompose(c *fiber.Ctx) error {
	var form models.MessageForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(form); err != nil {
		return validationFailed(c, err)
	}

	principal := h.userContext(c).CurrentPrincipal()
	id, err := h.service.Compose(c.UserContext(), principal, form.Subject, form.Message, form.ToEmail)
	if err != nil {
		if errors.Is(err, errs.ErrRecipientNotFound) {
			return fieldError(c, fiber.StatusUnprocessableEntity, "toEmail",
				fmt.Sprintf("A user with email %s was not found.", form.ToEmail))
		}
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			h.logger.Error("failed to compose message", zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"message": "Could not send message",
		})
	}

	c.Location(fmt.Sprintf("%s/messages/%d", APIPrefix, id))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent",
		"id":      id,
	})
}
