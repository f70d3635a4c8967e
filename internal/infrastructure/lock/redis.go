// Package lock provides the advisory lock that serializes radar runs.
package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker acquires a SET NX lock with a TTL so a crashed holder cannot
// block later runs forever.
type RedisLocker struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.RunLocker = (*RedisLocker)(nil)

// NewRedisLocker connects and pings Redis.
func NewRedisLocker(ctx context.Context, cfg config.LockConfig, logger *slog.Logger) (*RedisLocker, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLocker{rdb: rdb, ttl: ttl, logger: logger}, nil
}

// Acquire fails with domain.ErrRunInProgress when another holder owns key.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, domain.Upstream(fmt.Errorf("acquire lock %s: %w", key, err))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunInProgress, key)
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil && l.logger != nil {
			l.logger.Warn("release lock failed", "key", key, "error", err)
		}
	}
	return release, nil
}

// Close closes the Redis client.
func (l *RedisLocker) Close() error {
	return l.rdb.Close()
}
