package repository

import (
	"context"
	"time"
)

// Locker grants a named, expiring, cross-process lock. Acquire returns
// domain.ErrLockHeld when another holder owns key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
