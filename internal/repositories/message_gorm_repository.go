package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"securemail/internal/errs"
	"securemail/internal/models"

	"gorm.io/gorm"
)

// messageRow is the stored shape of a message: user references by id only.
type messageRow struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	SenderID    int64
	RecipientID int64
	Subject     string
	Body        string
}

func (messageRow) TableName() string { return "messages" }

// messageQuery joins both users so every read returns fully populated messages.
const messageQuery = `SELECT m.id, m.subject, m.body,
	s.id, s.email, s.password, s.first_name, s.last_name,
	r.id, r.email, r.password, r.first_name, r.last_name
FROM messages m
JOIN users s ON s.id = m.sender_id
JOIN users r ON r.id = m.recipient_id`

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// GetMessage retrieves a message with sender and recipient resolved.
func (r *GORMMessageRepository) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	messages, err := r.query(ctx, "WHERE m.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %d: %w", id, err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("could not find message with id %d: %w", id, errs.ErrNotFound)
	}
	return &messages[0], nil
}

// CreateMessage inserts the message in its own transaction and returns the generated id.
func (r *GORMMessageRepository) CreateMessage(ctx context.Context, message *models.Message) (int64, error) {
	if err := validateNewMessage(message); err != nil {
		return 0, err
	}

	row := messageRow{
		SenderID:    message.Sender.ID,
		RecipientID: message.Recipient.ID,
		Subject:     message.Subject,
		Body:        message.Body,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("message sender %d or recipient %d does not exist: %w",
				row.SenderID, row.RecipientID, errs.ErrInvalidInput)
		}
		return 0, fmt.Errorf("failed to create message: %w", err)
	}
	return row.ID, nil
}

// FindSentBy lists the messages sent by userID.
func (r *GORMMessageRepository) FindSentBy(ctx context.Context, userID int64) ([]models.Message, error) {
	messages, err := r.query(ctx, "WHERE m.sender_id = ? ORDER BY m.id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages sent by user %d: %w", userID, err)
	}
	return messages, nil
}

// FindReceivedBy lists the messages received by userID.
func (r *GORMMessageRepository) FindReceivedBy(ctx context.Context, userID int64) ([]models.Message, error) {
	messages, err := r.query(ctx, "WHERE m.recipient_id = ? ORDER BY m.id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages received by user %d: %w", userID, err)
	}
	return messages, nil
}

func (r *GORMMessageRepository) query(ctx context.Context, clause string, args ...interface{}) ([]models.Message, error) {
	rows, err := r.db.WithContext(ctx).Raw(messageQuery+"\n"+clause, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// isForeignKeyViolation matches the translated gorm error and the raw sqlite text, which
// older sqlite driver versions leave untranslated.
func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func scanMessage(rows *sql.Rows) (models.Message, error) {
	var (
		m         models.Message
		sender    models.User
		recipient models.User
	)
	err := rows.Scan(
		&m.ID, &m.Subject, &m.Body,
		&sender.ID, &sender.Email, &sender.Password, &sender.FirstName, &sender.LastName,
		&recipient.ID, &recipient.Email, &recipient.Password, &recipient.FirstName, &recipient.LastName,
	)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to scan message row: %w", err)
	}
	m.Sender = &sender
	m.Recipient = &recipient
	return m, nil
}
