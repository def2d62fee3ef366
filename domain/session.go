package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one sign-in of a user. It lives in the session store until it
// expires, the user signs out or an admin removes the user.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Token     string            `json:"token,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewSession opens a session for userID valid for ttl from now.
func NewSession(userID string, now time.Time, ttl time.Duration, metadata map[string]string) *Session {
	now = now.UTC()
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		Metadata:  metadata,
	}
}

// Renew moves the expiry to ttl from now.
func (s *Session) Renew(now time.Time, ttl time.Duration) {
	s.ExpiresAt = now.UTC().Add(ttl)
}

// IsExpired reports whether the session ended at or before reference.
// A zero reference means now.
func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
