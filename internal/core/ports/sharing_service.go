package ports

import (
	"context"

	"github.com/listshare/todo-share/internal/core/domain"
)

// SendResult is returned once a sent list has been persisted.
type SendResult struct {
	ListID    string
	Recipient string
	// Notified is true when an email notification was queued.
	Notified bool
}

// SharingService is the list-sharing use-case boundary. Every call that needs
// an identity receives it explicitly.
type SharingService interface {
	// ShareAnonymous stores payload under a fresh id. A nil principal yields
	// an ownerless list.
	ShareAnonymous(ctx context.Context, payload domain.Payload, principal *domain.Principal) (string, error)
	SendToUser(ctx context.Context, sender domain.Principal, recipientUsername string, payload domain.Payload) (*SendResult, error)
	GetByID(ctx context.Context, id string) (domain.Payload, error)
	MyRecentLists(ctx context.Context, principal domain.Principal) ([]domain.ListSummary, error)
	DeleteMine(ctx context.Context, principal domain.Principal, id string) error
	SearchUsers(ctx context.Context, principal domain.Principal, query string) ([]string, error)
}
