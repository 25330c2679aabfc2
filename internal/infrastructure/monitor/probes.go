package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
)

var errNotConfigured = errors.New("not configured")

// Probe checks one dependency. A failing critical probe marks the service
// unhealthy; a failing non-critical one is only reported.
type Probe struct {
	Name     string
	Critical bool
	Timeout  time.Duration
	Check    func(ctx context.Context) error
}

// Backlog is the write buffer as seen by the monitor.
type Backlog interface {
	Size() (int, error)
	Capacity() int
}

// RecordStore pings Postgres. Buffered writes are replayed only while it passes.
func RecordStore(pool *pgxpool.Pool) Probe {
	return Probe{
		Name:     ProbeRecordStore,
		Critical: true,
		Timeout:  3 * time.Second,
		Check: func(ctx context.Context) error {
			if pool == nil {
				return errNotConfigured
			}
			return pool.Ping(ctx)
		},
	}
}

// RunLock pings the Redis instance holding the recalculation lock. Task
// writes do not depend on it, so it is not critical.
func RunLock(client *redislib.Client) Probe {
	return Probe{
		Name:    ProbeRunLock,
		Timeout: 2 * time.Second,
		Check: func(ctx context.Context) error {
			if client == nil {
				return errNotConfigured
			}
			return client.Ping(ctx).Err()
		},
	}
}

// WriteBuffer fails when the buffer cannot be read or has no room left for
// another deferred write.
func WriteBuffer(backlog Backlog) Probe {
	return Probe{
		Name:     ProbeWriteBuffer,
		Critical: true,
		Check: func(ctx context.Context) error {
			if backlog == nil {
				return errNotConfigured
			}
			size, err := backlog.Size()
			if err != nil {
				return err
			}
			if capacity := backlog.Capacity(); capacity > 0 && size >= capacity {
				return fmt.Errorf("buffer full: %d of %d writes pending", size, capacity)
			}
			return nil
		},
	}
}
