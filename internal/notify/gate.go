package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Gate decides whether a target may notify again. Allow reserves the key and
// returns true at most once per cooldown window. Release drops the
// reservation so a failed delivery can be retried on the next cycle.
type Gate interface {
	Allow(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// MemoryGate keeps cooldown windows in process memory.
type MemoryGate struct {
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewMemoryGate returns a gate with the given cooldown.
func NewMemoryGate(cooldown time.Duration) *MemoryGate {
	return &MemoryGate{cooldown: cooldown, now: time.Now, last: make(map[string]time.Time)}
}

func (g *MemoryGate) Allow(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if prev, ok := g.last[key]; ok && now.Sub(prev) < g.cooldown {
		return false, nil
	}
	g.last[key] = now
	return true, nil
}

func (g *MemoryGate) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.last, key)
	return nil
}

// RedisGate keeps cooldown windows in Redis so restarts and parallel
// instances share them.
type RedisGate struct {
	client   redis.Cmdable
	cooldown time.Duration
	prefix   string
}

const redisKeyPrefix = "spotwatch:notified:"

// NewRedisGate returns a gate backed by client.
func NewRedisGate(client redis.Cmdable, cooldown time.Duration) *RedisGate {
	return &RedisGate{client: client, cooldown: cooldown, prefix: redisKeyPrefix}
}

func (g *RedisGate) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+key, "1", g.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (g *RedisGate) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
