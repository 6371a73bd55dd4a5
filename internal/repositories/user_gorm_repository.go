package repositories

import (
	"context"
	"errors"
	"fmt"

	"securemail/internal/errs"
	"securemail/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// GetUser retrieves a user by id.
func (r *GORMUserRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("could not find user with id %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// FindUserByEmail retrieves a user by exact email match.
func (r *GORMUserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty: %w", errs.ErrInvalidInput)
	}
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// CreateUser inserts a copy of user in its own transaction and returns the generated id.
func (r *GORMUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	if err := validateNewUser(user); err != nil {
		return 0, err
	}

	row := *user
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("user with email %s: %w", user.Email, errs.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return row.ID, nil
}
