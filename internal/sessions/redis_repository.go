package sessions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps each refresh session as a hash under
// "<prefix><refreshToken>" that expires together with the session.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-backed session repository. An empty
// prefix defaults to "session:".
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(refresh string) string {
	return r.prefix + refresh
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	k := r.key(s.RefreshToken)
	ttl := time.Until(s.ExpiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k,
			"sub", s.Sub,
			"aid", s.AID,
			"createdAt", s.CreatedAt.UTC().Unix(),
			"expiresAt", s.ExpiresAt.UTC().Unix(),
		)
		p.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// GetByRefresh returns nil, nil when the token is unknown or its session
// already expired.
func (r *RedisRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	k := r.key(refresh)
	h, err := r.client.HGetAll(ctx, k).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, nil
	}
	s, err := sessionFromHash(refresh, h)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", k, err)
	}
	if s.Expired(time.Now().UTC()) {
		_ = r.client.Del(ctx, k).Err()
		return nil, nil
	}
	return s, nil
}

func (r *RedisRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	return r.client.Del(ctx, r.key(refresh)).Err()
}

func sessionFromHash(refresh string, h map[string]string) (*Session, error) {
	aid, err := strconv.ParseInt(h["aid"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("aid: %w", err)
	}
	created, err := strconv.ParseInt(h["createdAt"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	expires, err := strconv.ParseInt(h["expiresAt"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("expiresAt: %w", err)
	}
	return &Session{
		RefreshToken: refresh,
		Sub:          h["sub"],
		AID:          aid,
		CreatedAt:    time.Unix(created, 0).UTC(),
		ExpiresAt:    time.Unix(expires, 0).UTC(),
	}, nil
}
