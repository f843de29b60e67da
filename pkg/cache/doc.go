// Package cache provides a small generic key-value cache with TTLs.
//
// Two backends implement Cache: Redis, used in every deployed environment,
// and Memory, used in tests and when no Redis URL is configured.
//
//	sessions := cache.NewRedis[session.Session](client, cache.WithPrefix("session"))
//	s, err := cache.GetOrSet(ctx, sessions, token, func(ctx context.Context) (session.Session, time.Duration, error) {
//		return loadFromDB(ctx, token)
//	})
//
// TTL semantics for Set: a positive duration expires the entry after that
// duration, zero applies the backend default, and a negative value never expires.
package cache
