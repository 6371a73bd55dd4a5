package repositories

import (
	"context"

	"securemail/internal/models"
)

// UserRepository is the user directory. It is the sole owner of user records.
type UserRepository interface {
	// GetUser returns the user with id or errs.ErrNotFound.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// FindUserByEmail returns nil and no error when no user has email.
	// An empty email is errs.ErrInvalidInput.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser persists an unsaved user and returns its new id. The input is not modified.
	CreateUser(ctx context.Context, user *models.User) (int64, error)
}
