package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only when it still holds our token, so
// a tick that outlived the TTL cannot release a newer invocation's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// RedisScanLock is a single-flight lock around one scheduler tick. The TTL
// bounds how long a crashed invocation can block the next cron tick.
type RedisScanLock struct {
	client  *redis.Client
	lockKey string
	token   string
	ttl     time.Duration
}

func NewRedisScanLock(client *redis.Client, ttl time.Duration) *RedisScanLock {
	return &RedisScanLock{
		client:  client,
		lockKey: "renotimeline:scheduler:lock",
		token:   uuid.New().String(),
		ttl:     ttl,
	}
}

func (l *RedisScanLock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.lockKey, l.token, l.ttl).Result()
}

func (l *RedisScanLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.lockKey}, l.token).Err()
}
