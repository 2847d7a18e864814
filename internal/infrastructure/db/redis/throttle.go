package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxFailures = 5
	defaultWindow      = 15 * time.Minute
)

// LoginThrottle counts failed logins per email in Redis.
// Key format: login_fail:<email>. The counter expires one window after the
// first failure it holds.
//
// The limit is soft under concurrency: attempts that pass Allowed before any
// of them is recorded are all evaluated. Each one still costs a full bcrypt
// comparison, and the counter itself is exact.
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

// NewLoginThrottle returns a throttle that blocks an email after maxFailures
// failed attempts within window. Non-positive values select the defaults.
func NewLoginThrottle(client *redis.Client, maxFailures int, window time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginThrottle{client: client, maxFailures: int64(maxFailures), window: window}
}

// Allowed reports whether email may attempt another login.
func (t *LoginThrottle) Allowed(ctx context.Context, email string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("login throttle get: %w", err)
	}
	return n < t.maxFailures, nil
}

// RecordFailure increments the failure counter of email. The key is created
// with its TTL and incremented inside one MULTI, so a counter never outlives
// its window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	_, err := t.failures(ctx, email)
	return err
}

func (t *LoginThrottle) failures(ctx context.Context, email string) (int64, error) {
	key := t.key(email)
	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, t.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("login throttle record: %w", err)
	}
	return incr.Val(), nil
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return "login_fail:" + email
}
