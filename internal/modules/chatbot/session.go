package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "chatbot:session:"

type Preferences struct {
	Budget *int   `json:"budget,omitempty"`
	Rooms  string `json:"rooms,omitempty"`
	Area   string `json:"area,omitempty"`
}

// Session is the per-user dialogue context.
type Session struct {
	Stage       string      `json:"stage"`
	Preferences Preferences `json:"preferences"`
	LastSearch  string      `json:"last_search,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func newSession() *Session {
	return &Session{Stage: IntentGreeting}
}

// SessionStore keeps sessions between messages. Get returns nil, nil for an
// unknown or expired user.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Save(ctx context.Context, userID string, s *Session) error
	Delete(ctx context.Context, userID string) error
	Count(ctx context.Context) (int, error)
}

// RedisSessionStore stores sessions as JSON with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (r *RedisSessionStore) Get(ctx context.Context, userID string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, userID string, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, sessionKey(userID)).Err()
}

// Count scans the session keyspace; it is meant for health output, not hot paths.
func (r *RedisSessionStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	return n, nil
}
