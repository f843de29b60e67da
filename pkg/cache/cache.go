package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is the boundary the auth service uses for secondary session storage.
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Codec converts values to bytes for byte-oriented backends.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

// JSON is the default Codec.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrCodec, err)
	}
	return data, nil
}

func (JSON[V]) Decode(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrCodec, err)
	}
	return v, nil
}

// Option configures a backend.
type Option func(*options)

type options struct {
	prefix     string
	defaultTTL time.Duration
	janitor    time.Duration
}

func newOptions(opts []Option) options {
	o := options{defaultTTL: time.Hour, janitor: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPrefix namespaces keys as "{prefix}:{key}".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithDefaultTTL sets the expiration used when Set is called with a zero TTL.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) { o.defaultTTL = d }
}

// WithCleanupInterval sets how often Memory drops expired entries.
// Zero disables the background sweep. Redis ignores it.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.janitor = d }
}

func (o options) key(k string) string {
	if o.prefix == "" {
		return k
	}
	return o.prefix + ":" + k
}

func (o options) ttl(d time.Duration) time.Duration {
	if d == 0 {
		return o.defaultTTL
	}
	return d
}

var loads singleflight.Group

// GetOrSet returns the cached value for key, or computes it with fn on a miss.
// Concurrent misses for the same key share a single fn call.
// fn also returns the TTL to cache the value with; an fn error is not cached.
// A failed cache write is ignored since the value is still correct.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	type loaded struct {
		val V
		ttl time.Duration
	}

	res, err, _ := loads.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, val, ttl)
		return loaded{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(loaded).val, nil
}
