// Package lock provides the mutual exclusion used around a full catalog sync.
// The local locker covers a single server; the redis locker covers several
// instances sharing one database.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker acquires named locks without blocking
type Locker interface {
	// TryLock returns ok=false when the lock is already held. release must be called once.
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// Local is an in-process Locker
type Local struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocal creates an in-process locker
func NewLocal() *Local {
	return &Local{held: make(map[string]bool)}
}

func (l *Local) TryLock(_ context.Context, name string, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, true, nil
}

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker backed by SET NX with expiry
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis creates a redis-backed locker
func NewRedis(client *redis.Client, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = "toybox:lock:"
	}
	return &Redis{client: client, keyPrefix: keyPrefix}
}

func (r *Redis) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := r.keyPrefix + name
	token, err := randomToken()
	if err != nil {
		return nil, false, err
	}

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, r.client, []string{key}, token).Err()
		})
	}, true, nil
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
