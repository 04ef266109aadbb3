// Package redis keeps the last known presence status of users in Redis
// hashes, one per user, for deployments that share status with other
// services.
package redis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/huddlehq/huddle-server/internal/store"
)

const keyPrefix = "huddle:user:"

// StatusStore implements store.StatusStore on top of Redis.
type StatusStore struct {
	client goredis.Cmdable
	closer func() error
	now    func() time.Time
}

// New connects to Redis at addr and checks the connection.
func New(addr, password string, db int) (*StatusStore, error) {
	maxPool := runtime.NumCPU() * 8
	if maxPool > 512 {
		maxPool = 512
	}

	rc := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: maxPool,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	s := NewWithClient(rc)
	s.closer = rc.Close
	return s, nil
}

// NewWithClient wraps an existing client. Close is a no-op for it.
func NewWithClient(client goredis.Cmdable) *StatusStore {
	return &StatusStore{client: client, now: time.Now}
}

func userKey(userID string) string {
	return keyPrefix + userID
}

// SetUserStatus stores status and the time it was recorded.
func (s *StatusStore) SetUserStatus(ctx context.Context, userID, status string) error {
	err := s.client.HSet(ctx, userKey(userID),
		"status", status,
		"status_at", s.now().Unix(),
	).Err()
	if err != nil {
		return fmt.Errorf("hset status: %w", err)
	}
	return nil
}

// UserStatus returns the last recorded status of userID.
func (s *StatusStore) UserStatus(ctx context.Context, userID string) (string, error) {
	status, err := s.client.HGet(ctx, userKey(userID), "status").Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", fmt.Errorf("status of %s: %w", userID, store.ErrNotFound)
		}
		return "", fmt.Errorf("hget status: %w", err)
	}
	return status, nil
}

// Close releases the client when New created it.
func (s *StatusStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

var _ store.StatusStore = (*StatusStore)(nil)
