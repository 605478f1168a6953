package guard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// ErrLeaseLost is the cancellation cause seen by a critical section whose
// lock expired or was taken over while it ran.
var ErrLeaseLost = errors.New("guard: lock lease lost")

// RedisLock is a cross-process lock built on SET NX PX.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
	renew  time.Duration
}

// NewRedisLock builds a lock on key. ttl bounds how long a crashed holder
// can block others; a live holder renews the lease every ttl/3.
func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	if key == "" {
		key = "register:write-lock"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLock{client: client, key: key, ttl: ttl, retry: 25 * time.Millisecond, renew: max(ttl/3, time.Millisecond)}
}

func (l *RedisLock) Do(ctx context.Context, fn func(context.Context) error) error {
	token := uuid.NewString()
	if err := l.acquire(ctx, token); err != nil {
		return err
	}
	defer l.release(token)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.keepAlive(ctx, token, cancel, stop)
	}()

	err := fn(ctx)
	close(stop)
	wg.Wait()
	if err != nil && errors.Is(context.Cause(ctx), ErrLeaseLost) {
		return fmt.Errorf("%w: %w", ErrLeaseLost, err)
	}
	return err
}

// keepAlive extends the lease until stop is closed. The section is cancelled
// once the lease is gone or could not be renewed within one ttl.
func (l *RedisLock) keepAlive(ctx context.Context, token string, lost context.CancelCauseFunc, stop <-chan struct{}) {
	t := time.NewTicker(l.renew)
	defer t.Stop()
	expires := time.Now().Add(l.ttl)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-t.C:
		}
		n, err := renewScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			log.Printf("guard: renew %s: %v", l.key, err)
			if time.Now().After(expires) {
				lost(ErrLeaseLost)
				return
			}
		case n == 0:
			log.Printf("guard: lease on %s lost", l.key)
			lost(ErrLeaseLost)
			return
		default:
			expires = time.Now().Add(l.ttl)
		}
	}
}

func (l *RedisLock) acquire(ctx context.Context, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return fmt.Errorf("guard: acquire %s: %w", l.key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("guard: acquire %s: %w", l.key, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

// release runs on its own context so a cancelled request still frees the lock.
func (l *RedisLock) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		log.Printf("guard: release %s: %v", l.key, err)
	}
}
