package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
	"github.com/listshare/todo-share/internal/pkg/metrics"
)

const (
	recentListsLimit = 10
	userSearchLimit  = 5
)

// SharingService implements ports.SharingService.
type SharingService struct {
	users  ports.UserRepository
	lists  ports.ListRepository
	queue  ports.NotificationQueue
	logger zerolog.Logger

	newID func() string
	now   func() time.Time
}

func NewSharingService(
	users ports.UserRepository,
	lists ports.ListRepository,
	queue ports.NotificationQueue,
	logger zerolog.Logger,
) *SharingService {
	return &SharingService{
		users:  users,
		lists:  lists,
		queue:  queue,
		logger: logger,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ShareAnonymous stores payload under a fresh capability id. Lists shared
// without a principal have no owner and can never be listed or deleted.
func (s *SharingService) ShareAnonymous(ctx context.Context, payload domain.Payload, principal *domain.Principal) (string, error) {
	if payload == nil {
		return "", fmt.Errorf("%w: list payload must be a JSON object", domain.ErrValidation)
	}

	list := &domain.SharedList{
		ID:        s.newID(),
		Payload:   payload.Clone(),
		CreatedAt: s.now(),
	}
	kind := "anonymous"
	if principal != nil && principal.UserID != "" {
		list.OwnerID = principal.UserID
		kind = "owned"
	}

	if err := s.lists.Put(ctx, list); err != nil {
		s.logger.Error().Err(err).Msg("failed to store shared list")
		return "", fmt.Errorf("share list: %w", err)
	}

	metrics.ListsStoredTotal.WithLabelValues(kind).Inc()
	s.logger.Info().Str("list_id", list.ID).Str("owner_id", list.OwnerID).Msg("list shared")
	return list.ID, nil
}

// SendToUser stores a renamed copy of payload owned by the recipient and
// queues an email for them. The call succeeds as soon as the copy is stored;
// the notification outcome is never reported back.
func (s *SharingService) SendToUser(ctx context.Context, sender domain.Principal, recipientUsername string, payload domain.Payload) (*ports.SendResult, error) {
	if sender.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if recipientUsername == "" || len(payload) == 0 {
		return nil, fmt.Errorf("%w: recipient and list data are required", domain.ErrValidation)
	}

	recipient, err := s.users.FindByUsername(ctx, recipientUsername)
	if err != nil {
		return nil, fmt.Errorf("resolve recipient %q: %w", recipientUsername, err)
	}

	originalName := payload.Name()
	list := &domain.SharedList{
		ID:        s.newID(),
		Payload:   payload.Clone(),
		OwnerID:   recipient.ID,
		CreatedAt: s.now(),
	}
	list.Payload["name"] = fmt.Sprintf("%s (from %s)", originalName, sender.Username)
	// The embedded id mirrors the store id; clients read it back from the payload.
	list.Payload["id"] = list.ID

	if err := s.lists.Put(ctx, list); err != nil {
		s.logger.Error().Err(err).Str("recipient", recipient.Username).Msg("failed to store sent list")
		return nil, fmt.Errorf("send list: %w", err)
	}
	metrics.ListsStoredTotal.WithLabelValues("sent").Inc()

	result := &ports.SendResult{ListID: list.ID, Recipient: recipient.Username}
	if recipient.Email != "" {
		result.Notified = s.queue.Enqueue(domain.Notification{
			ListID:       list.ID,
			ToEmail:      recipient.Email,
			FromUsername: sender.Username,
			ListName:     originalName,
			Tasks:        payload.Tasks(),
		})
	}

	s.logger.Info().
		Str("list_id", list.ID).
		Str("from", sender.Username).
		Str("to", recipient.Username).
		Bool("notified", result.Notified).
		Msg("list sent to user")

	return result, nil
}

func (s *SharingService) GetByID(ctx context.Context, id string) (domain.Payload, error) {
	list, err := s.lists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return list.Payload, nil
}

func (s *SharingService) MyRecentLists(ctx context.Context, principal domain.Principal) ([]domain.ListSummary, error) {
	if principal.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	summaries, err := s.lists.ListRecentByOwner(ctx, principal.UserID, recentListsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	if summaries == nil {
		summaries = []domain.ListSummary{}
	}
	return summaries, nil
}

// DeleteMine removes the list when principal owns it. Anything else is a no-op.
func (s *SharingService) DeleteMine(ctx context.Context, principal domain.Principal, id string) error {
	if principal.UserID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.lists.DeleteByIDAndOwner(ctx, id, principal.UserID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

func (s *SharingService) SearchUsers(ctx context.Context, principal domain.Principal, query string) ([]string, error) {
	if principal.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}
	names, err := s.users.SearchByPrefix(ctx, query, principal.UserID, userSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
