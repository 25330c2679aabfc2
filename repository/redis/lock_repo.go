package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redislib.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type locker struct {
	client *redislib.Client
	prefix string
}

// NewLocker creates a Redis-backed Locker using SET NX PX.
func NewLocker(client *redislib.Client) repository.Locker {
	return &locker{
		client: client,
		prefix: "lock:",
	}
}

func (l *locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(key), token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{l.key(key)}, token).Err()
	}
	return release, nil
}

func (l *locker) key(name string) string {
	return fmt.Sprintf("%s%s", l.prefix, name)
}
