package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when no session is stored for a user.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps the active token per user in Redis.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(userID string) string {
	return "session:" + userID
}

// Save stores token for userID, replacing any previous session.
func (r *SessionRepository) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns the stored token for userID.
func (r *SessionRepository) Get(ctx context.Context, userID string) (string, error) {
	token, err := r.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("get session: %w", err)
	}
	return token, nil
}

// Delete removes the session for userID. Missing sessions are not an error.
func (r *SessionRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
