package ports

import (
	"context"

	"github.com/listshare/todo-share/internal/core/domain"
)

// UserRepository persists user accounts. Username uniqueness is enforced by
// the implementation, not by callers.
type UserRepository interface {
	// Create inserts a new user or fails with domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// SearchByPrefix returns up to limit usernames starting with prefix
	// (case-sensitive), never including the user whose id is excludeID.
	SearchByPrefix(ctx context.Context, prefix, excludeID string, limit int) ([]string, error)
}
