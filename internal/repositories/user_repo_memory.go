package repositories

import (
	"context"
	"fmt"
	"sync"

	"securemail/internal/errs"
	"securemail/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users  map[int64]models.User
	nextID int64
	mu     sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[int64]models.User),
		nextID: 1,
	}
}

// GetUser returns a user by its id.
func (r *MemoryUserRepository) GetUser(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("could not find user with id %d: %w", id, errs.ErrNotFound)
	}
	return &user, nil
}

// FindUserByEmail returns the user owning email, or nil.
func (r *MemoryUserRepository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty: %w", errs.ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, nil
}

// CreateUser stores a copy of user under the next id.
func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) (int64, error) {
	if err := validateNewUser(user); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return 0, fmt.Errorf("user with email %s: %w", user.Email, errs.ErrAlreadyExists)
		}
	}

	row := *user
	row.ID = r.nextID
	r.nextID++
	r.users[row.ID] = row
	return row.ID, nil
}
