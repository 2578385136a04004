package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotFound marks a session artifact that has not been stored yet. Callers
// decide whether that is a default (missing transcript/analysis) or a real
// not-found outcome (audio fetch).
var ErrNotFound = errors.New("session artifact not found")

// SessionStore keeps session artifacts as keyed blobs in Redis. Keys follow
// sessions/{session_id}/{artifact}; every write refreshes the TTL so a whole
// session expires together after its last activity.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

func artifactKey(sessionID, artifact string) string {
	return fmt.Sprintf("sessions/%s/%s", sessionID, artifact)
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) PutBlob(ctx context.Context, sessionID, artifact string, data []byte) error {
	key := artifactKey(sessionID, artifact)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	zap.L().Debug("Stored session artifact", zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

func (s *SessionStore) GetBlob(ctx context.Context, sessionID, artifact string) ([]byte, error) {
	key := artifactKey(sessionID, artifact)
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *SessionStore) PutJSON(ctx context.Context, sessionID, artifact string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", artifact, err)
	}
	return s.PutBlob(ctx, sessionID, artifact, data)
}

func (s *SessionStore) GetJSON(ctx context.Context, sessionID, artifact string, v any) error {
	data, err := s.GetBlob(ctx, sessionID, artifact)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", artifact, err)
	}
	return nil
}
