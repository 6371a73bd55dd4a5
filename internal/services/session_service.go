package services

import (
	"context"
	"fmt"

	"securemail/internal/errs"
	"securemail/internal/models"
	"securemail/internal/security"
	"securemail/internal/sessions"

	"go.uber.org/zap"
)

// SessionService backs the administrator session views.
type SessionService struct {
	registry sessions.Registry
	logger   *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(registry sessions.Registry, logger *zap.Logger) *SessionService {
	return &SessionService{registry: registry, logger: logger}
}

// Principals lists every principal with a live session.
func (s *SessionService) Principals(ctx context.Context) ([]*security.Principal, error) {
	return s.registry.GetAllPrincipals(ctx)
}

// SessionsForUser returns the user and its live sessions, or errs.ErrNotFound when the
// user has none.
func (s *SessionService) SessionsForUser(ctx context.Context, userID int64) (*models.User, []sessions.Information, error) {
	principals, err := s.registry.GetAllPrincipals(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, principal := range principals {
		if principal.User.ID != userID {
			continue
		}
		infos, err := s.registry.GetAllSessions(ctx, userID, false)
		if err != nil {
			return nil, nil, err
		}
		return principal.User, infos, nil
	}
	return nil, nil, fmt.Errorf("couldn't find sessions for user %d: %w", userID, errs.ErrNotFound)
}

// Expire marks the session expired so its token stops working.
func (s *SessionService) Expire(ctx context.Context, sessionID string) error {
	info, err := s.registry.GetSessionInformation(ctx, sessionID)
	if err != nil {
		return err
	}
	if info == nil {
		return fmt.Errorf("session %s: %w", sessionID, errs.ErrNotFound)
	}
	if err := s.registry.ExpireNow(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("session expired", zap.String("sessionID", sessionID), zap.Int64("userID", info.Principal.User.ID))
	return nil
}
