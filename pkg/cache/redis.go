package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by Redis. The client lifecycle belongs to the
// caller (see pkg/redis).
type Redis[V any] struct {
	client redis.UniversalClient
	codec  Codec[V]
	opts   options
}

// NewRedis creates a Redis-backed cache that encodes values as JSON.
func NewRedis[V any](client redis.UniversalClient, opts ...Option) *Redis[V] {
	return NewRedisWithCodec[V](client, JSON[V]{}, opts...)
}

// NewRedisWithCodec is NewRedis with a custom value encoding.
func NewRedisWithCodec[V any](client redis.UniversalClient, codec Codec[V], opts ...Option) *Redis[V] {
	return &Redis[V]{client: client, codec: codec, opts: newOptions(opts)}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.opts.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.codec.Decode(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	// Redis reads 0 as "no expiration", which is what a negative TTL means here.
	return r.client.Set(ctx, r.opts.key(key), data, max(r.opts.ttl(ttl), 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.opts.key(key)).Err()
}

var _ Cache[any] = (*Redis[any])(nil)
