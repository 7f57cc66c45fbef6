package ports

import (
	"context"

	"github.com/listshare/todo-share/internal/core/domain"
)

// Notifier delivers a single notification. One call is one delivery attempt.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// NotificationService delivers a notification at most once per list id.
type NotificationService interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// NotificationQueue accepts notifications for asynchronous delivery.
// Enqueue must never block the caller.
type NotificationQueue interface {
	Enqueue(n domain.Notification) bool
}

// NotificationGuard records which list ids have already been notified.
type NotificationGuard interface {
	// Claim returns true when listID had not been claimed before.
	Claim(ctx context.Context, listID string) (bool, error)
}
