package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"storefront/pkg/account"
)

// CookieName is the cookie carrying the session id.
const CookieName = "session_id"

// KeyPrefix namespaces sessions in Redis.
const KeyPrefix = "session:"

// ErrNoSession indicates the session id is unknown or expired.
var ErrNoSession = errors.New("no session")

// SessionStore keeps sessions in Redis as JSON-encoded actors with a TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	newID  func() string
}

// NewSessionStore creates a store whose sessions expire after ttl.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl, newID: uuid.NewString}
}

// TTL is the lifetime of a new session.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

func sessionKey(sid string) string { return KeyPrefix + sid }

// Create opens a session for actor and returns its id.
func (s *SessionStore) Create(ctx context.Context, actor account.Actor) (string, error) {
	raw, err := json.Marshal(actor)
	if err != nil {
		return "", err
	}
	sid := s.newID()
	if err := s.client.Set(ctx, sessionKey(sid), raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return sid, nil
}

// Get resolves a session id to its actor.
func (s *SessionStore) Get(ctx context.Context, sid string) (account.Actor, error) {
	if sid == "" {
		return account.Actor{}, ErrNoSession
	}
	raw, err := s.client.Get(ctx, sessionKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return account.Actor{}, ErrNoSession
	}
	if err != nil {
		return account.Actor{}, fmt.Errorf("loading session: %w", err)
	}
	var actor account.Actor
	if err := json.Unmarshal(raw, &actor); err != nil || actor.ID == "" {
		return account.Actor{}, ErrNoSession
	}
	return actor, nil
}

// Delete ends a session. Unknown ids are not an error.
func (s *SessionStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, sessionKey(sid)).Err()
}
