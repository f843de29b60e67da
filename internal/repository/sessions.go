package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/upresume/pkg/session"
)

var _ session.Store = (*SessionStore)(nil)

// SessionStore persists sessions in Postgres.
type SessionStore struct {
	repo *Repository
}

// Sessions returns the Postgres session.Store.
func (r *Repository) Sessions() *SessionStore {
	return &SessionStore{repo: r}
}

const sessionColumns = `id, user_id, token, expires_at, ip, user_agent, created_at, updated_at`

func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.repo.db.Exec(ctx, query,
		sess.ID, sess.UserID, sess.Token, sess.ExpiresAt, sess.IP, sess.UserAgent, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", mapErr(err))
	}
	return nil
}

// Get returns session.ErrExpired for a stored but expired session.
func (s *SessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrInvalidToken
	}

	var sess session.Session
	err := s.repo.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token = $1`, token).Scan(
		&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt, &sess.IP, &sess.UserAgent, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(mapErr(err), ErrNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.IsExpired() {
		return &sess, session.ErrExpired
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.repo.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := s.TokensDeletedFor(ctx, userID)
	return err
}

// TokensDeletedFor removes every session of userID and returns their tokens,
// so callers can evict them from caches.
func (s *SessionStore) TokensDeletedFor(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.repo.db.Query(ctx, `DELETE FROM sessions WHERE user_id = $1 RETURNING token`, userID)
	if err != nil {
		return nil, fmt.Errorf("delete user sessions: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("delete user sessions: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// DeleteExpired removes sessions that expired before now.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.repo.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
