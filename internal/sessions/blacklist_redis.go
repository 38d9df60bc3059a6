package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist remembers access tokens revoked by logout until they expire.
type Blacklist interface {
	Add(ctx context.Context, tokenID string, ttl time.Duration) error
	Contains(ctx context.Context, tokenID string) (bool, error)
}

// RedisBlacklist stores revoked token ids under "blacklist:access:<id>".
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(c *redis.Client) *RedisBlacklist { return &RedisBlacklist{client: c} }

func (b *RedisBlacklist) key(id string) string { return "blacklist:access:" + id }

func (b *RedisBlacklist) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.key(tokenID), "1", ttl).Err()
}

func (b *RedisBlacklist) Contains(ctx context.Context, tokenID string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// MemoryBlacklist is the in-process fallback when Redis is not configured.
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time), now: time.Now}
}

func (b *MemoryBlacklist) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[tokenID] = b.now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) Contains(ctx context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.entries[tokenID]
	if !ok {
		return false, nil
	}
	if b.now().After(exp) {
		delete(b.entries, tokenID)
		return false, nil
	}
	return true, nil
}
