package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"securemail/internal/errs"
	"securemail/internal/security"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "securemail:session:"
	sessionIndexKey  = "securemail:sessions"

	// maxUpdateAttempts bounds the optimistic retries of a contended session update.
	maxUpdateAttempts = 10
)

// RedisClient is the subset of *redis.Client used by RedisRegistry.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
}

// RedisRegistry stores each session as a JSON value plus a set indexing all session ids.
// Entries live for ttl after their last write.
type RedisRegistry struct {
	client RedisClient
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisRegistry creates a registry on client. A zero ttl keeps entries forever.
func NewRedisRegistry(client RedisClient, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, ttl: ttl, now: time.Now}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// RegisterNewSession stores a fresh session for principal and indexes it.
func (r *RedisRegistry) RegisterNewSession(ctx context.Context, sessionID string, principal *security.Principal) error {
	if sessionID == "" || principal == nil {
		return fmt.Errorf("session id and principal are required: %w", errs.ErrInvalidInput)
	}
	info := Information{
		SessionID:   sessionID,
		Principal:   principal,
		LastRequest: r.now().UTC(),
	}
	if err := r.save(ctx, info); err != nil {
		return err
	}
	if err := r.client.SAdd(ctx, sessionIndexKey, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to index session %s: %w", sessionID, err)
	}
	return nil
}

// GetAllPrincipals lists each principal with a session that is not expired.
func (r *RedisRegistry) GetAllPrincipals(ctx context.Context) ([]*security.Principal, error) {
	infos, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return principalsOf(infos), nil
}

// GetAllSessions lists the sessions of userID.
func (r *RedisRegistry) GetAllSessions(ctx context.Context, userID int64, includeExpired bool) ([]Information, error) {
	infos, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return sessionsOf(infos, userID, includeExpired), nil
}

// GetSessionInformation returns the session or nil when it is unknown or has lapsed.
func (r *RedisRegistry) GetSessionInformation(ctx context.Context, sessionID string) (*Information, error) {
	return decodeSession(r.client.Get(ctx, sessionKey(sessionID)), sessionID)
}

func decodeSession(cmd *redis.StringCmd, sessionID string) (*Information, error) {
	raw, err := cmd.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	var info Information
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &info, nil
}

// Refresh stamps the session with the current time.
func (r *RedisRegistry) Refresh(ctx context.Context, sessionID string) error {
	return r.update(ctx, sessionID, func(info *Information) { info.LastRequest = r.now().UTC() })
}

// ExpireNow marks the session expired. It stays listed until removed or lapsed.
func (r *RedisRegistry) ExpireNow(ctx context.Context, sessionID string) error {
	return r.update(ctx, sessionID, func(info *Information) { info.Expired = true })
}

// RemoveSessionInformation deletes the session and its index entry.
func (r *RedisRegistry) RemoveSessionInformation(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	if err := r.client.SRem(ctx, sessionIndexKey, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to unindex session %s: %w", sessionID, err)
	}
	return nil
}

// update applies fn to the stored session inside WATCH/MULTI, retrying the read-modify-write
// when the key changes underneath it.
func (r *RedisRegistry) update(ctx context.Context, sessionID string, fn func(*Information)) error {
	key := sessionKey(sessionID)
	txf := func(tx *redis.Tx) error {
		info, err := decodeSession(tx.Get(ctx, key), sessionID)
		if err != nil {
			return err
		}
		if info == nil {
			return fmt.Errorf("session %s: %w", sessionID, errs.ErrNotFound)
		}
		fn(info)
		payload, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to encode session %s: %w", sessionID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("session %s kept changing during update", sessionID)
}

func (r *RedisRegistry) save(ctx context.Context, info Information) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", info.SessionID, err)
	}
	if err := r.client.Set(ctx, sessionKey(info.SessionID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", info.SessionID, err)
	}
	return nil
}

// all loads every indexed session, dropping index entries whose value has gone.
func (r *RedisRegistry) all(ctx context.Context) ([]Information, error) {
	ids, err := r.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Strings(ids)

	infos := make([]Information, 0, len(ids))
	for _, id := range ids {
		info, err := r.GetSessionInformation(ctx, id)
		if err != nil {
			return nil, err
		}
		if info == nil {
			_ = r.client.SRem(ctx, sessionIndexKey, id).Err()
			continue
		}
		infos = append(infos, *info)
	}
	return infos, nil
}
