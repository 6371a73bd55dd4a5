package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"securemail/internal/errs"
	"securemail/internal/models"
)

// MemoryMessageRepository is an in-memory implementation of MessageRepository.
// Sender and recipient are resolved through users on every read.
type MemoryMessageRepository struct {
	users    UserRepository
	messages map[int64]messageRow
	nextID   int64
	mu       sync.RWMutex
}

// NewMemoryMessageRepository creates a new instance of MemoryMessageRepository.
func NewMemoryMessageRepository(users UserRepository) *MemoryMessageRepository {
	return &MemoryMessageRepository{
		users:    users,
		messages: make(map[int64]messageRow),
		nextID:   1,
	}
}

// GetMessage returns a message by its id.
func (r *MemoryMessageRepository) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	r.mu.RLock()
	row, ok := r.messages[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("could not find message with id %d: %w", id, errs.ErrNotFound)
	}
	message, err := r.resolve(ctx, row)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// CreateMessage stores the message under the next id.
func (r *MemoryMessageRepository) CreateMessage(ctx context.Context, message *models.Message) (int64, error) {
	if err := validateNewMessage(message); err != nil {
		return 0, err
	}
	for _, id := range []int64{message.Sender.ID, message.Recipient.ID} {
		if _, err := r.users.GetUser(ctx, id); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return 0, fmt.Errorf("message user %d does not exist: %w", id, errs.ErrInvalidInput)
			}
			return 0, fmt.Errorf("failed to create message: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	row := messageRow{
		ID:          r.nextID,
		SenderID:    message.Sender.ID,
		RecipientID: message.Recipient.ID,
		Subject:     message.Subject,
		Body:        message.Body,
	}
	r.nextID++
	r.messages[row.ID] = row
	return row.ID, nil
}

// FindSentBy lists the messages sent by userID.
func (r *MemoryMessageRepository) FindSentBy(ctx context.Context, userID int64) ([]models.Message, error) {
	return r.filter(ctx, func(row messageRow) bool { return row.SenderID == userID })
}

// FindReceivedBy lists the messages received by userID.
func (r *MemoryMessageRepository) FindReceivedBy(ctx context.Context, userID int64) ([]models.Message, error) {
	return r.filter(ctx, func(row messageRow) bool { return row.RecipientID == userID })
}

func (r *MemoryMessageRepository) filter(ctx context.Context, keep func(messageRow) bool) ([]models.Message, error) {
	r.mu.RLock()
	rows := make([]messageRow, 0)
	for _, row := range r.messages {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })

	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		message, err := r.resolve(ctx, row)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (r *MemoryMessageRepository) resolve(ctx context.Context, row messageRow) (models.Message, error) {
	sender, err := r.users.GetUser(ctx, row.SenderID)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to resolve sender of message %d: %w", row.ID, err)
	}
	recipient, err := r.users.GetUser(ctx, row.RecipientID)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to resolve recipient of message %d: %w", row.ID, err)
	}
	return models.Message{
		ID:        row.ID,
		Subject:   row.Subject,
		Body:      row.Body,
		Sender:    sender,
		Recipient: recipient,
	}, nil
}
