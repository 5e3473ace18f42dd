package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// allowScript implements the sliding window atomically server-side: drop
// expired members, count the rest, and only record the hit when it fits.
// KEYS[1] window set, ARGV: now-micros, window-micros, limit, member.
var allowScript = redis.NewScript(`
local cutoff = tonumber(ARGV[1]) - tonumber(ARGV[2])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', cutoff)
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
redis.call('PEXPIRE', KEYS[1], math.ceil(tonumber(ARGV[2]) / 1000))
return 1
`)

// RedisStore shares the window across replicas. Keys expire with the window,
// so Redis handles the sweep that MemoryStore runs itself.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now().UnixMicro()
	member := uuid.New().String()
	res, err := allowScript.Run(ctx, s.client, []string{s.prefix + key},
		now, window.Microseconds(), limit, member).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit redis: %w", err)
	}
	return res == 1, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
