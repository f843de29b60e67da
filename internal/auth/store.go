package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/upresume/pkg/cache"
	"github.com/dmitrymomot/upresume/pkg/session"
)

// SessionDB is the durable session store. TokensDeletedFor lets the cache
// layer evict every token of a user.
type SessionDB interface {
	session.Store
	TokensDeletedFor(ctx context.Context, userID string) ([]string, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

var _ session.Store = (*CachedStore)(nil)

// CachedStore reads sessions through a KV cache keyed "session:<token>",
// falling back to the database. Cached entries live as long as the session.
type CachedStore struct {
	db     SessionDB
	cache  cache.Cache[session.Session]
	logger *slog.Logger
}

func NewCachedStore(db SessionDB, c cache.Cache[session.Session], log *slog.Logger) *CachedStore {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CachedStore{db: db, cache: c, logger: log}
}

func cacheKey(token string) string {
	return "session:" + token
}

func (s *CachedStore) Create(ctx context.Context, sess *session.Session) error {
	if err := s.db.Create(ctx, sess); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, cacheKey(sess.Token), *sess, sess.Remaining()); err != nil {
		s.logger.WarnContext(ctx, "session cache write failed", slog.Any("error", err))
	}
	return nil
}

// Get deletes and reports expired sessions as session.ErrExpired.
func (s *CachedStore) Get(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrInvalidToken
	}

	sess, err := cache.GetOrSet(ctx, s.cache, cacheKey(token), func(ctx context.Context) (session.Session, time.Duration, error) {
		found, err := s.db.Get(ctx, token)
		if err != nil {
			return session.Session{}, 0, err
		}
		return *found, found.Remaining(), nil
	})
	if errors.Is(err, session.ErrExpired) {
		_ = s.db.Delete(ctx, token)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	// The token is not serialized, so cached entries come back without it.
	sess.Token = token
	if sess.IsExpired() {
		if err := s.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, session.ErrExpired
	}
	return &sess, nil
}

func (s *CachedStore) Delete(ctx context.Context, token string) error {
	return errors.Join(
		s.db.Delete(ctx, token),
		ignoreMiss(s.cache.Delete(ctx, cacheKey(token))),
	)
}

func (s *CachedStore) DeleteByUserID(ctx context.Context, userID string) error {
	tokens, err := s.db.TokensDeletedFor(ctx, userID)
	if err != nil {
		return err
	}
	errs := make([]error, 0, len(tokens))
	for _, t := range tokens {
		errs = append(errs, ignoreMiss(s.cache.Delete(ctx, cacheKey(t))))
	}
	return errors.Join(errs...)
}

// DeleteExpired sweeps the database. Cached copies expire on their own TTL.
func (s *CachedStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.db.DeleteExpired(ctx, now)
}

func ignoreMiss(err error) error {
	if errors.Is(err, cache.ErrNotFound) {
		return nil
	}
	return err
}
