package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotAcquired is returned by Guard when another holder owns the key.
var ErrNotAcquired = errors.New("lock not acquired")

type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Noop grants every lock. Used when no Redis is configured; the version
// check in the stores remains the only concurrency guard.
type Noop struct{}

func (Noop) Lock(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (Noop) Unlock(context.Context, string) error                      { return nil }

// Guard runs fn while holding key. A nil locker behaves like Noop.
func Guard(ctx context.Context, locker Locker, key string, ttl time.Duration, fn func(context.Context) error) error {
	const op = "lock.Guard"

	if locker == nil {
		return fn(ctx)
	}
	ok, err := locker.Lock(ctx, key, ttl)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return ErrNotAcquired
	}
	defer func() {
		// fresh context so a cancelled request still releases the key
		unlockCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = locker.Unlock(unlockCtx, key)
	}()
	return fn(ctx)
}
