package security

import (
	"context"
	"fmt"

	"securemail/internal/errs"
	"securemail/internal/repositories"
)

// Credentials is anything a Provider may know how to check.
type Credentials interface {
	Name() string
}

// UsernamePassword is a login name and a secret. The name is the user's email.
type UsernamePassword struct {
	Username string
	Password string
}

// Name returns the username.
func (c UsernamePassword) Name() string { return c.Username }

// Provider authenticates one kind of credentials.
// Authenticate returns (nil, nil) to decline and let the next provider try.
type Provider interface {
	Supports(creds Credentials) bool
	Authenticate(ctx context.Context, creds Credentials) (*Principal, error)
}

// DirectoryProvider checks username/password credentials against the user directory.
type DirectoryProvider struct {
	users repositories.UserRepository
}

// NewDirectoryProvider creates a provider backed by users.
func NewDirectoryProvider(users repositories.UserRepository) *DirectoryProvider {
	return &DirectoryProvider{users: users}
}

// Supports accepts UsernamePassword only.
func (p *DirectoryProvider) Supports(creds Credentials) bool {
	_, ok := creds.(UsernamePassword)
	return ok
}

// Authenticate looks the user up by email and compares passwords.
func (p *DirectoryProvider) Authenticate(ctx context.Context, creds Credentials) (*Principal, error) {
	up, ok := creds.(UsernamePassword)
	if !ok || up.Username == "" {
		return nil, nil
	}

	user, err := p.users.FindUserByEmail(ctx, up.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %s: %w", up.Username, err)
	}
	if user == nil {
		return nil, nil
	}
	if !PasswordsMatch(user.Password, up.Password) {
		return nil, fmt.Errorf("username / password was not found: %w", errs.ErrBadCredentials)
	}
	return NewPrincipal(user), nil
}

// ProviderManager tries each provider in order.
type ProviderManager struct {
	providers []Provider
}

// NewProviderManager chains providers.
func NewProviderManager(providers ...Provider) *ProviderManager {
	return &ProviderManager{providers: providers}
}

// Authenticate returns the first principal produced by a supporting provider. The first
// provider error stops the chain. When every provider declines the result is
// errs.ErrBadCredentials.
func (m *ProviderManager) Authenticate(ctx context.Context, creds Credentials) (*Principal, error) {
	for _, provider := range m.providers {
		if !provider.Supports(creds) {
			continue
		}
		principal, err := provider.Authenticate(ctx, creds)
		if err != nil {
			return nil, err
		}
		if principal != nil {
			return principal, nil
		}
	}
	return nil, fmt.Errorf("no provider authenticated %s: %w", creds.Name(), errs.ErrBadCredentials)
}
