package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
	"github.com/listshare/todo-share/internal/pkg/metrics"
)

type notificationService struct {
	notifier ports.Notifier
	guard    ports.NotificationGuard
	log      zerolog.Logger
}

// NewNotificationService returns a NotificationService that mails each list
// id at most once.
func NewNotificationService(notifier ports.Notifier, guard ports.NotificationGuard, log zerolog.Logger) ports.NotificationService {
	return &notificationService{notifier: notifier, guard: guard, log: log}
}

// Deliver claims the list id, then makes exactly one delivery attempt.
func (s *notificationService) Deliver(ctx context.Context, n domain.Notification) error {
	// 1. Skip lists that were already notified.
	fresh, err := s.guard.Claim(ctx, n.ListID)
	if err != nil {
		s.log.Warn().Err(err).Str("list_id", n.ListID).Msg("dedup claim failed, delivering anyway")
	} else if !fresh {
		metrics.NotificationsTotal.WithLabelValues("duplicate").Inc()
		s.log.Debug().Str("list_id", n.ListID).Msg("duplicate notification skipped")
		return nil
	}

	// 2. Single attempt; the claim is kept even on failure so nothing retries.
	if err := s.notifier.Notify(ctx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("deliver notification for list %s: %w", n.ListID, err)
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	s.log.Info().
		Str("list_id", n.ListID).
		Str("from", n.FromUsername).
		Msg("notification sent")
	return nil
}
