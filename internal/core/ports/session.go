package ports

import (
	"context"
	"time"

	"github.com/listshare/todo-share/internal/core/domain"
)

// SessionClaims is the verified content of a session token.
type SessionClaims struct {
	TokenID   string
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// Principal converts verified claims into the request principal.
func (c *SessionClaims) Principal() domain.Principal {
	return domain.Principal{UserID: c.UserID, Username: c.Username}
}

// TokenParser verifies a raw session token.
type TokenParser interface {
	Parse(token string) (*SessionClaims, error)
}

// TokenRevoker tracks tokens invalidated by logout.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
