// Package memory provides process-local implementations of the store ports.
// They back the "memory" storage driver and the HTTP-level tests; state is
// lost on restart.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/listshare/todo-share/internal/core/domain"
)

// UserRepository is a mutex-guarded user table with a unique username index.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byUsername map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return nil, domain.ErrUserExists
	}
	stored := *user
	r.byID[stored.ID] = &stored
	r.byUsername[stored.Username] = stored.ID

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// SearchByPrefix returns matches in username order so results are stable.
func (r *UserRepository) SearchByPrefix(_ context.Context, prefix, excludeID string, limit int) ([]string, error) {
	if prefix == "" || limit <= 0 {
		return []string{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, limit)
	for username, id := range r.byUsername {
		if id != excludeID && strings.HasPrefix(username, prefix) {
			names = append(names, username)
		}
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

type listRow struct {
	id        string
	payload   []byte // serialized, so stored lists cannot be mutated through shared maps
	ownerID   string
	createdAt time.Time
	seq       uint64
}

// ListRepository keeps shared lists with an insertion sequence for ordering.
type ListRepository struct {
	mu   sync.RWMutex
	rows map[string]*listRow
	seq  uint64
}

func NewListRepository() *ListRepository {
	return &ListRepository{rows: make(map[string]*listRow)}
}

func (r *ListRepository) Put(_ context.Context, list *domain.SharedList) error {
	data, err := json.Marshal(list.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[list.ID]; exists {
		return domain.ErrListExists
	}
	r.seq++
	r.rows[list.ID] = &listRow{
		id:        list.ID,
		payload:   data,
		ownerID:   list.OwnerID,
		createdAt: list.CreatedAt,
		seq:       r.seq,
	}
	return nil
}

func (r *ListRepository) Get(_ context.Context, id string) (*domain.SharedList, error) {
	r.mu.RLock()
	row, ok := r.rows[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrListNotFound
	}

	payload, err := decodePayload(row.payload)
	if err != nil {
		return nil, err
	}
	return &domain.SharedList{
		ID:        row.id,
		Payload:   payload,
		OwnerID:   row.ownerID,
		CreatedAt: row.createdAt,
	}, nil
}

func (r *ListRepository) ListRecentByOwner(_ context.Context, ownerID string, limit int) ([]domain.ListSummary, error) {
	if ownerID == "" || limit <= 0 {
		return []domain.ListSummary{}, nil
	}

	r.mu.RLock()
	owned := make([]*listRow, 0)
	for _, row := range r.rows {
		if row.ownerID == ownerID {
			owned = append(owned, row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool { return owned[i].seq > owned[j].seq })
	if len(owned) > limit {
		owned = owned[:limit]
	}

	out := make([]domain.ListSummary, 0, len(owned))
	for _, row := range owned {
		payload, err := decodePayload(row.payload)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ListSummary{ID: row.id, Name: payload.Name()})
	}
	return out, nil
}

func (r *ListRepository) DeleteByIDAndOwner(_ context.Context, id, ownerID string) error {
	if ownerID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.rows[id]; ok && row.ownerID == ownerID {
		delete(r.rows, id)
	}
	return nil
}

func decodePayload(data []byte) (domain.Payload, error) {
	var payload domain.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}
