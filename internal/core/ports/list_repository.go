package ports

import (
	"context"

	"github.com/listshare/todo-share/internal/core/domain"
)

// ListRepository persists shared list payloads keyed by their capability id.
type ListRepository interface {
	// Put inserts a new list. An existing id yields domain.ErrListExists;
	// rows are never overwritten.
	Put(ctx context.Context, list *domain.SharedList) error
	// Get returns the list regardless of owner, or domain.ErrListNotFound.
	Get(ctx context.Context, id string) (*domain.SharedList, error)
	// ListRecentByOwner returns up to limit summaries, newest insert first.
	ListRecentByOwner(ctx context.Context, ownerID string, limit int) ([]domain.ListSummary, error)
	// DeleteByIDAndOwner removes the list only when both id and owner match.
	// A mismatch is not an error.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}
