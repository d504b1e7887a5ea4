// Package idempotency guards handlers of at-least-once deliveries so a
// message is processed once even when the broker redelivers it.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrDuplicate is returned by Exec when the key was already processed or is
// being processed by another worker.
var ErrDuplicate = errors.New("idempotency: duplicate delivery")

// State is the value stored under a claimed key.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Guard runs fn at most once per key.
type Guard interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// Option tunes a single Exec call.
type Option func(*execOptions)

type execOptions struct {
	lock time.Duration
	ttl  time.Duration
}

// WithLockDuration bounds how long a crashed worker can hold a key.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lock = d }
}

// WithStateTTL sets how long a completed key is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.ttl = d }
}

// Redis tracks key state in redis using SET NX.
type Redis struct {
	client redis.Cmdable
	prefix string
}

// NewRedis returns a Guard storing keys under prefix.
func NewRedis(client redis.Cmdable, prefix string) *Redis {
	if prefix == "" {
		prefix = "idempotency:"
	}
	return &Redis{client: client, prefix: prefix}
}

// Exec claims key, runs fn and records the outcome. A failed fn releases the
// key so a redelivery can try again.
func (r *Redis) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := execOptions{lock: time.Minute, ttl: 24 * time.Hour}
	for _, opt := range opts {
		opt(&o)
	}

	k := r.prefix + key
	claimed, err := r.client.SetNX(ctx, k, string(StateInProgress), o.lock).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return ErrDuplicate
	}

	if err := fn(ctx); err != nil {
		if delErr := r.client.Del(context.WithoutCancel(ctx), k).Err(); delErr != nil {
			return errors.Join(err, delErr)
		}
		return err
	}

	return r.client.Set(ctx, k, string(StateCompleted), o.ttl).Err()
}

// Noop is a Guard that always runs fn. It is used when no redis is configured.
type Noop struct{}

// Exec runs fn.
func (Noop) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...Option) error {
	return fn(ctx)
}
