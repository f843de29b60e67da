// Package session defines the server-side session record and its storage contract.
package session

import "time"

// DefaultTTL is the lifetime of a freshly issued session.
const DefaultTTL = 7 * 24 * time.Hour

// Session is issued on sign-in and invalidated on sign-out or expiry.
// Token is the opaque cookie value and is never serialized.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IP        string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates a session for userID that expires after ttl.
func New(id, userID, token string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAuthenticated returns true if the session has an associated user.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.expiredAt(time.Now())
}

// Remaining returns the lifetime left, or zero when expired.
func (s *Session) Remaining() time.Duration {
	return max(time.Until(s.ExpiresAt), 0)
}

func (s *Session) expiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
