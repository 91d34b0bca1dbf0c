package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Locker serializes work on a key across callers. Acquire waits until the lock
// is held, ctx ends or the wait budget runs out; ok=false means it gave up.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// localLocker is a keyed mutex for single-instance deployments.
type localLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	wait  time.Duration
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) Locker {
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &localLocker{locks: make(map[string]*keyLock), wait: wait}
}

func (l *localLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.unref(key, kl)
			})
		}, true, nil
	case <-ctx.Done():
		l.unref(key, kl)
		return nil, false, ctx.Err()
	case <-timer.C:
		l.unref(key, kl)
		return nil, false, nil
	}
}

func (l *localLocker) unref(key string, kl *keyLock) {
	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// redisLocker holds SET NX PX leases so that one instance at a time works on a key.
type redisLocker struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisLocker(rdb goredis.UniversalClient, prefix string, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if prefix == "" {
		prefix = "assignments:lock:"
	}
	return &redisLocker{rdb: rdb, prefix: prefix, ttl: ttl, wait: ttl, poll: 25 * time.Millisecond}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	if l.rdb == nil {
		return nil, false, errors.New("redis locker: nil client")
	}
	fullKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if acquired {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.rdb, []string{fullKey}, token).Err()
			}, true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}
