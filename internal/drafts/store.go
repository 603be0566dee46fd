// Package drafts provides the draft cache backing the builder's ambient
// auto-persist: the working copy of a resume under the generic "resume" key,
// and the last-known user identity per client. Whether a given editing
// session is allowed to write here is decided by the session's persistence
// gate, not by this package.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/resume"
)

// ErrNotFound is returned when a draft or identity is absent. It is the
// service-wide not-found sentinel, so callers classify a cache miss the same
// way as a backend 404.
var ErrNotFound = backend.ErrNotFound

// DefaultTTL is how long drafts and cached identities live without a write.
const DefaultTTL = 14 * 24 * time.Hour

// commands is the subset of redis commands the store uses. Tests supply an
// in-memory implementation.
type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store reads and writes drafts and cached identities.
type Store struct {
	client commands
	ttl    time.Duration
}

// NewStore creates a Store on top of a redis client.
func NewStore(client commands, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func draftKey(userEmail string) string {
	// One generic draft slot per user, mirroring the single "resume" key the
	// builder auto-persists into.
	return "resume-builder:draft:resume:" + userEmail
}

func identityKey(clientID string) string {
	return "resume-builder:identity:" + clientID
}

// PutDraft stores the user's working copy under the generic resume key.
func (s *Store) PutDraft(ctx context.Context, userEmail string, state resume.EditingState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(userEmail), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

// GetDraft loads the user's working copy. Returns ErrNotFound when no draft
// exists.
func (s *Store) GetDraft(ctx context.Context, userEmail string) (resume.EditingState, error) {
	data, err := s.client.Get(ctx, draftKey(userEmail)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return resume.EditingState{}, ErrNotFound
		}
		return resume.EditingState{}, fmt.Errorf("failed to load draft: %w", err)
	}

	var state resume.EditingState
	if err := json.Unmarshal(data, &state); err != nil {
		return resume.EditingState{}, fmt.Errorf("failed to decode draft: %w", err)
	}
	return state, nil
}

// DeleteDraft removes the user's working copy.
func (s *Store) DeleteDraft(ctx context.Context, userEmail string) error {
	return s.client.Del(ctx, draftKey(userEmail)).Err()
}

// SetIdentity caches the resolved user identity for a client.
func (s *Store) SetIdentity(ctx context.Context, clientID, userEmail string) error {
	if err := s.client.Set(ctx, identityKey(clientID), userEmail, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache identity: %w", err)
	}
	return nil
}

// Identity returns the cached identity for a client. Returns ErrNotFound
// when none is cached.
func (s *Store) Identity(ctx context.Context, clientID string) (string, error) {
	email, err := s.client.Get(ctx, identityKey(clientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load cached identity: %w", err)
	}
	return email, nil
}
