package lock

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

const (
	defaultLeaseTTL    = 10 * time.Second
	defaultWaitTimeout = 5 * time.Second
	retryInterval      = 20 * time.Millisecond
	keyPrefix          = "investfolio:lock:"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig configures the Redis lease lock.
type RedisConfig struct {
	Addr        string // Redis address, e.g. "localhost:6379"
	Password    string
	DB          int
	LeaseTTL    time.Duration // lease expiry protecting against crashed holders
	WaitTimeout time.Duration // give up (retryable) after waiting this long
}

// RedisLocker is a lease lock shared by every instance pointing at the same Redis.
// A lease that expires before the holder releases it can be taken over, so LeaseTTL
// must exceed the longest buy or sell.
type RedisLocker struct {
	client      *goredis.Client
	leaseTTL    time.Duration
	waitTimeout time.Duration
	log         zerolog.Logger
}

// NewRedisLocker connects to Redis and pings the server
func NewRedisLocker(cfg RedisConfig, log zerolog.Logger) (*RedisLocker, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisLocker(client, cfg, log), nil
}

func newRedisLocker(client *goredis.Client, cfg RedisConfig, log zerolog.Logger) *RedisLocker {
	l := &RedisLocker{
		client:      client,
		leaseTTL:    cfg.LeaseTTL,
		waitTimeout: cfg.WaitTimeout,
		log:         log.With().Str("component", "redis_lock").Logger(),
	}
	if l.leaseTTL <= 0 {
		l.leaseTTL = defaultLeaseTTL
	}
	if l.waitTimeout <= 0 {
		l.waitTimeout = defaultWaitTimeout
	}
	return l
}

// Client returns the underlying Redis client for health checks.
func (l *RedisLocker) Client() *goredis.Client { return l.client }

// Lock polls SET NX until the lease is acquired, ctx is done, or the wait timeout passes.
// A timeout wraps domain.ErrConflict.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, redisKey, token, l.leaseTTL).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(redisKey, token) }, nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("lock %s still held after %s: %w", key, l.waitTimeout, domain.ErrConflict)
		case <-ticker.C:
		}
	}
}

// release runs on a fresh context so a cancelled request still frees its lease
func (l *RedisLocker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", redisKey).Msg("Failed to release lock, lease will expire")
	}
}

// Close closes the Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
