package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"securemail/internal/errs"
	"securemail/internal/models"
	"securemail/internal/repositories"
	"securemail/internal/security"
	"securemail/internal/sessions"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Authenticator resolves credentials to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, creds security.Credentials) (*security.Principal, error)
}

// AuthOptions configures AuthService.
type AuthOptions struct {
	JWTSecret        string
	TokenTTL         time.Duration
	PasswordEncoding string
}

// AuthService handles login, signup and the session-bound tokens that identify callers.
type AuthService struct {
	userRepo         repositories.UserRepository
	authenticator    Authenticator
	registry         sessions.Registry
	jwtSecret        []byte
	tokenDurat       time.Duration
	passwordEncoding string
	logger           *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, authenticator Authenticator, registry sessions.Registry, opts AuthOptions, logger *zap.Logger) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		userRepo:         userRepo,
		authenticator:    authenticator,
		registry:         registry,
		jwtSecret:        []byte(opts.JWTSecret),
		tokenDurat:       ttl,
		passwordEncoding: opts.PasswordEncoding,
		logger:           logger,
	}
}

// Login authenticates the credentials and opens a session, returning its token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *security.Principal, error) {
	principal, err := s.authenticator.Authenticate(ctx, security.UsernamePassword{Username: username, Password: password})
	if err != nil {
		return "", nil, err
	}

	token, err := s.startSession(ctx, principal)
	if err != nil {
		return "", nil, err
	}
	return token, principal, nil
}

// Signup creates a new user when the email is free and logs the user in.
func (s *AuthService) Signup(ctx context.Context, form models.SignupForm) (string, *models.User, error) {
	existing, err := s.userRepo.FindUserByEmail(ctx, form.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check email %s: %w", form.Email, err)
	}
	if existing != nil {
		return "", nil, fmt.Errorf("a user with email %s already exists: %w", form.Email, errs.ErrAlreadyExists)
	}

	user := form.ToUser()
	encoded, err := security.EncodePassword(s.passwordEncoding, user.Password)
	if err != nil {
		return "", nil, err
	}
	user.Password = encoded

	id, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign up %s: %w", form.Email, err)
	}
	user.ID = id
	s.logger.Info("user signed up", zap.Int64("userID", id), zap.String("email", user.Email))

	token, err := s.startSession(ctx, security.NewPrincipal(user))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout removes the session named in the token claims.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.registry.RemoveSessionInformation(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// Resolve validates the token, checks its session is still live and returns the
// principal bound to that session together with the session id.
func (s *AuthService) Resolve(ctx context.Context, tokenString string) (*security.Principal, string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, errs.ErrUnauthorized)
	}

	sessionID, _ := claims["sid"].(string)
	if sessionID == "" {
		return nil, "", fmt.Errorf("token carries no session: %w", errs.ErrUnauthorized)
	}

	info, err := s.registry.GetSessionInformation(ctx, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load session: %w", err)
	}
	if info == nil || info.Expired {
		return nil, "", fmt.Errorf("session %s: %w", sessionID, errs.ErrSessionExpired)
	}
	if err := s.registry.Refresh(ctx, sessionID); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.logger.Warn("failed to refresh session", zap.String("sessionID", sessionID), zap.Error(err))
	}
	return info.Principal, sessionID, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) startSession(ctx context.Context, principal *security.Principal) (string, error) {
	sessionID := uuid.New().String()
	if err := s.registry.RegisterNewSession(ctx, sessionID, principal); err != nil {
		return "", fmt.Errorf("failed to register session: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": principal.User.ID,
		"email":   principal.User.Email,
		"roles":   principal.Roles,
		"sid":     sessionID,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		_ = s.registry.RemoveSessionInformation(ctx, sessionID)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("session started", zap.Int64("userID", principal.User.ID), zap.String("sessionID", sessionID))
	return tokenString, nil
}
