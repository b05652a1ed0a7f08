// Package lock provides the mutual exclusion used by background jobs so that
// only one replica runs a job at a time.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker hands out named leases. Acquire reports false when another holder
// owns the key; the returned release func is nil in that case.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// New returns a Redis backed locker, or a process local one when rdb is nil.
func New(rdb *redis.Client) Locker {
	if rdb == nil {
		return NewLocal()
	}
	return &redisLocker{rdb: rdb}
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb *redis.Client
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("error acquiring lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("error releasing lock %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}

type localLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
	now    func() time.Time
}

// NewLocal returns an in-process locker with the same lease semantics.
func NewLocal() Locker {
	return &localLocker{leases: map[string]time.Time{}, now: time.Now}
}

func (l *localLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if exp, held := l.leases[key]; held && now.Before(exp) {
		return nil, false, nil
	}
	exp := now.Add(ttl)
	l.leases[key] = exp
	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.leases[key].Equal(exp) {
			delete(l.leases, key)
		}
		return nil
	}
	return release, true, nil
}
