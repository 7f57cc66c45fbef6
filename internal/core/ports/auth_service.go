package ports

import (
	"context"
	"time"

	"github.com/listshare/todo-share/internal/core/domain"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	User      *domain.User
	Principal domain.Principal
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	// Logout invalidates the session token for the rest of its lifetime.
	Logout(ctx context.Context, claims *SessionClaims) error
}
