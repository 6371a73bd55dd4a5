package services

import (
	"context"
	"fmt"

	"securemail/internal/errs"
	"securemail/internal/models"
	"securemail/internal/repositories"
	"securemail/internal/security"

	"go.uber.org/zap"
)

// EventPublisher announces stored messages to other services.
type EventPublisher interface {
	PublishMessageCreated(event map[string]interface{}) error
}

// MessageService composes, lists and shows messages on behalf of an explicit principal.
type MessageService struct {
	userRepo    repositories.UserRepository
	messageRepo repositories.MessageRepository
	publisher   EventPublisher
	logger      *zap.Logger
}

// NewMessageService creates a new MessageService. publisher may be nil.
func NewMessageService(userRepo repositories.UserRepository, messageRepo repositories.MessageRepository, publisher EventPublisher, logger *zap.Logger) *MessageService {
	return &MessageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Compose sends a message from sender to the user owning recipientEmail and returns the
// new message id.
func (s *MessageService) Compose(ctx context.Context, sender *security.Principal, subject, body, recipientEmail string) (int64, error) {
	if sender == nil || sender.User == nil {
		return 0, fmt.Errorf("sender is required: %w", errs.ErrInvalidInput)
	}

	recipient, err := s.userRepo.FindUserByEmail(ctx, recipientEmail)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if recipient == nil {
		return 0, fmt.Errorf("a user with email %s was not found: %w", recipientEmail, errs.ErrRecipientNotFound)
	}

	message := &models.Message{
		Subject:   subject,
		Body:      body,
		Sender:    sender.User,
		Recipient: recipient,
	}
	id, err := s.messageRepo.CreateMessage(ctx, message)
	if err != nil {
		return 0, fmt.Errorf("failed to create message: %w", err)
	}

	s.publishCreated(id, sender.User.ID, recipient.ID)
	return id, nil
}

// Inbox lists the messages received by userID, newest first.
func (s *MessageService) Inbox(ctx context.Context, userID int64) ([]models.Message, error) {
	return s.messageRepo.FindReceivedBy(ctx, userID)
}

// Sent lists the messages sent by userID, newest first.
func (s *MessageService) Sent(ctx context.Context, userID int64) ([]models.Message, error) {
	return s.messageRepo.FindSentBy(ctx, userID)
}

// Show returns the message when principal may view it and errs.ErrAccessDenied otherwise.
// The lookup happens before the policy check, so an unknown id is errs.ErrNotFound for everyone.
func (s *MessageService) Show(ctx context.Context, id int64, principal *security.Principal) (*models.Message, error) {
	message, err := s.messageRepo.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if !security.CanView(principal, message) {
		return nil, fmt.Errorf("message %d: %w", id, errs.ErrAccessDenied)
	}
	return message, nil
}

func (s *MessageService) publishCreated(messageID, senderID, recipientID int64) {
	if s.publisher == nil {
		s.logger.Debug("no event publisher configured, skipping message.created", zap.Int64("messageID", messageID))
		return
	}
	event := map[string]interface{}{
		"messageID":   messageID,
		"senderID":    senderID,
		"recipientID": recipientID,
	}
	if err := s.publisher.PublishMessageCreated(event); err != nil {
		s.logger.Warn("failed to publish message.created", zap.Int64("messageID", messageID), zap.Error(err))
	}
}
