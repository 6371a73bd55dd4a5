package sessions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"securemail/internal/errs"
	"securemail/internal/security"
)

// MemoryRegistry keeps sessions in process memory.
type MemoryRegistry struct {
	sessions map[string]Information
	now      func() time.Time
	mu       sync.RWMutex
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		sessions: make(map[string]Information),
		now:      time.Now,
	}
}

// RegisterNewSession stores a fresh session for principal.
func (r *MemoryRegistry) RegisterNewSession(_ context.Context, sessionID string, principal *security.Principal) error {
	if sessionID == "" || principal == nil {
		return fmt.Errorf("session id and principal are required: %w", errs.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = Information{
		SessionID:   sessionID,
		Principal:   principal,
		LastRequest: r.now(),
	}
	return nil
}

// GetAllPrincipals lists each principal with a session that is not expired.
func (r *MemoryRegistry) GetAllPrincipals(_ context.Context) ([]*security.Principal, error) {
	return principalsOf(r.snapshot()), nil
}

// GetAllSessions lists the sessions of userID.
func (r *MemoryRegistry) GetAllSessions(_ context.Context, userID int64, includeExpired bool) ([]Information, error) {
	return sessionsOf(r.snapshot(), userID, includeExpired), nil
}

// GetSessionInformation returns a copy of the session or nil when it is unknown.
func (r *MemoryRegistry) GetSessionInformation(_ context.Context, sessionID string) (*Information, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// Refresh stamps the session with the current time.
func (r *MemoryRegistry) Refresh(_ context.Context, sessionID string) error {
	return r.update(sessionID, func(info *Information) { info.LastRequest = r.now() })
}

// ExpireNow marks the session expired. It stays listed until removed.
func (r *MemoryRegistry) ExpireNow(_ context.Context, sessionID string) error {
	return r.update(sessionID, func(info *Information) { info.Expired = true })
}

// RemoveSessionInformation forgets the session.
func (r *MemoryRegistry) RemoveSessionInformation(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryRegistry) update(sessionID string, fn func(*Information)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, errs.ErrNotFound)
	}
	fn(&info)
	r.sessions[sessionID] = info
	return nil
}

// snapshot returns all sessions ordered by id so listings are stable.
func (r *MemoryRegistry) snapshot() []Information {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Information, 0, len(r.sessions))
	for _, info := range r.sessions {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].SessionID < infos[j].SessionID })
	return infos
}
