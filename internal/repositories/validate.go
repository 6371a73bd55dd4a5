package repositories

import (
	"fmt"

	"securemail/internal/errs"
	"securemail/internal/models"
)

func validateNewUser(user *models.User) error {
	if user == nil {
		return fmt.Errorf("user cannot be nil: %w", errs.ErrInvalidInput)
	}
	if user.ID != 0 {
		return fmt.Errorf("user id must be unset when creating a user, got %d: %w", user.ID, errs.ErrInvalidInput)
	}
	return nil
}

func validateNewMessage(message *models.Message) error {
	if message == nil {
		return fmt.Errorf("message cannot be nil: %w", errs.ErrInvalidInput)
	}
	if message.ID != 0 {
		return fmt.Errorf("message id must be unset when creating a message, got %d: %w", message.ID, errs.ErrInvalidInput)
	}
	if message.Sender == nil || message.Sender.ID == 0 {
		return fmt.Errorf("message sender must be a persisted user: %w", errs.ErrInvalidInput)
	}
	if message.Recipient == nil || message.Recipient.ID == 0 {
		return fmt.Errorf("message recipient must be a persisted user: %w", errs.ErrInvalidInput)
	}
	return nil
}
