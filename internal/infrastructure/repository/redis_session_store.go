package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "install:session:"

// RedisSessionStore keeps install sessions in Redis, expiring with the session
type RedisSessionStore struct {
	client    redis.Cmdable
	keyPrefix string
	now       func() time.Time
}

// NewRedisSessionStore creates a session store on an existing Redis client
func NewRedisSessionStore(client redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{
		client:    client,
		keyPrefix: sessionKeyPrefix,
		now:       time.Now,
	}
}

// Save stores the session under the shop key, replacing any previous one
func (s *RedisSessionStore) Save(ctx context.Context, session *domain.InstallSession) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("install session for %s is already expired", session.Shop)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode install session: %w", err)
	}

	if err := s.client.Set(ctx, s.keyPrefix+session.Shop, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save install session: %w", err)
	}
	return nil
}

// Consume reads and deletes the session of a shop in one GETDEL
func (s *RedisSessionStore) Consume(ctx context.Context, shop string) (*domain.InstallSession, error) {
	data, err := s.client.GetDel(ctx, s.keyPrefix+shop).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume install session: %w", err)
	}

	var session domain.InstallSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode install session: %w", err)
	}
	return &session, nil
}

var _ ports.SessionStore = (*RedisSessionStore)(nil)
