// Package session tracks live authenticated sessions and provides the
// bulk revocation the account lifecycle depends on: suspending or
// banning an account must leave it with zero live sessions.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a live authenticated session.
type Session struct {
	// ID is the unique session identifier (format: ses_XXXX).
	ID string `json:"id"`

	// UserID is the account the session belongs to.
	UserID string `json:"userId"`

	// Token is the opaque session token presented by the client.
	Token string `json:"token"`

	// IPAddress and UserAgent describe the client that opened the
	// session.
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`

	// CreatedAt is when the session was opened.
	CreatedAt time.Time `json:"createdAt"`

	// ExpiresAt is when the session lapses on its own.
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSession returns a session for the given user with a fresh ID.
func NewSession(userID, token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        "ses_" + uuid.New().String()[:22],
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
