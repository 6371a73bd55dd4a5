package repositories

import (
	"context"

	"securemail/internal/models"
)

// MessageRepository is the message store. Every read returns messages whose sender and
// recipient are full user records.
type MessageRepository interface {
	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	// CreateMessage persists an unsaved message and returns its new id.
	CreateMessage(ctx context.Context, message *models.Message) (int64, error)
	// FindSentBy lists messages sent by userID, newest first. Never nil.
	FindSentBy(ctx context.Context, userID int64) ([]models.Message, error)
	// FindReceivedBy lists messages received by userID, newest first. Never nil.
	FindReceivedBy(ctx context.Context, userID int64) ([]models.Message, error)
}
