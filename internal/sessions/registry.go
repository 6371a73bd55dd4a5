// Package sessions tracks the live login sessions of every principal so administrators can
// list them and expire them one at a time.
package sessions

import (
	"context"
	"time"

	"securemail/internal/security"
)

// Information describes one login session.
type Information struct {
	SessionID   string              `json:"sessionId"`
	Principal   *security.Principal `json:"principal"`
	LastRequest time.Time           `json:"lastRequest"`
	Expired     bool                `json:"expired"`
}

// Registry stores session information. GetSessionInformation returns nil and no error for
// unknown ids.
type Registry interface {
	RegisterNewSession(ctx context.Context, sessionID string, principal *security.Principal) error
	// GetAllPrincipals lists each principal with at least one session that is not expired.
	GetAllPrincipals(ctx context.Context) ([]*security.Principal, error)
	GetAllSessions(ctx context.Context, userID int64, includeExpired bool) ([]Information, error)
	GetSessionInformation(ctx context.Context, sessionID string) (*Information, error)
	// Refresh records a request made with the session.
	Refresh(ctx context.Context, sessionID string) error
	ExpireNow(ctx context.Context, sessionID string) error
	RemoveSessionInformation(ctx context.Context, sessionID string) error
}

func principalsOf(infos []Information) []*security.Principal {
	seen := make(map[int64]bool)
	principals := make([]*security.Principal, 0)
	for _, info := range infos {
		if info.Expired || info.Principal == nil || info.Principal.User == nil {
			continue
		}
		id := info.Principal.User.ID
		if seen[id] {
			continue
		}
		seen[id] = true
		principals = append(principals, info.Principal)
	}
	return principals
}

func sessionsOf(infos []Information, userID int64, includeExpired bool) []Information {
	result := make([]Information, 0)
	for _, info := range infos {
		if info.Principal == nil || info.Principal.User == nil || info.Principal.User.ID != userID {
			continue
		}
		if info.Expired && !includeExpired {
			continue
		}
		result = append(result, info)
	}
	return result
}
