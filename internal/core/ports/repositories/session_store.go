package repositories

import (
	"context"
	"time"
)

// SessionStore tracks live login sessions in an external store with TTL
// expiry. A session absent from the store is dead regardless of what the
// bearer token claims, which is what makes server-side logout possible.
type SessionStore interface {
	// PutSession records a session for userID under sessionID, expiring
	// after ttl.
	PutSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error

	// GetSession returns the userID owning the session, or ErrNotFound when
	// the session is absent or expired.
	GetSession(ctx context.Context, sessionID string) (string, error)

	// DeleteSession removes the session. Deleting an absent session is not
	// an error.
	DeleteSession(ctx context.Context, sessionID string) error
}
