package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/listshare/todo-share/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs shared by the service tests.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User // keyed by username
	findErr   error
	searchErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.users[user.Username] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SearchByPrefix(_ context.Context, prefix, excludeID string, limit int) ([]string, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	var out []string
	for _, u := range r.users {
		if u.ID != excludeID && strings.HasPrefix(u.Username, prefix) && len(out) < limit {
			out = append(out, u.Username)
		}
	}
	return out, nil
}

func (r *stubUserRepo) add(id, username, email string) *domain.User {
	u := &domain.User{ID: id, Username: username, Email: email}
	r.users[username] = u
	return u
}

type stubListRepo struct {
	rows   []*domain.SharedList // insertion order
	putErr error
}

func (r *stubListRepo) Put(_ context.Context, l *domain.SharedList) error {
	if r.putErr != nil {
		return r.putErr
	}
	for _, row := range r.rows {
		if row.ID == l.ID {
			return domain.ErrListExists
		}
	}
	clone := *l
	clone.Payload = l.Payload.Clone()
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *stubListRepo) Get(_ context.Context, id string) (*domain.SharedList, error) {
	for _, row := range r.rows {
		if row.ID == id {
			clone := *row
			return &clone, nil
		}
	}
	return nil, domain.ErrListNotFound
}

func (r *stubListRepo) ListRecentByOwner(_ context.Context, ownerID string, limit int) ([]domain.ListSummary, error) {
	var out []domain.ListSummary
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].OwnerID == ownerID && ownerID != "" {
			out = append(out, domain.ListSummary{ID: r.rows[i].ID, Name: r.rows[i].Payload.Name()})
		}
	}
	return out, nil
}

func (r *stubListRepo) DeleteByIDAndOwner(_ context.Context, id, ownerID string) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.ID == id && row.OwnerID == ownerID && ownerID != "" {
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return nil
}

type stubQueue struct {
	mu       sync.Mutex
	enqueued []domain.Notification
	reject   bool
}

func (q *stubQueue) Enqueue(n domain.Notification) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.reject {
		return false
	}
	q.enqueued = append(q.enqueued, n)
	return true
}

type stubRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	if r.revoked == nil {
		r.revoked = make(map[string]time.Duration)
	}
	r.revoked[tokenID] = ttl
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := r.revoked[tokenID]
	return ok, nil
}

type stubNotifier struct {
	sent []domain.Notification
	err  error
}

func (n *stubNotifier) Notify(_ context.Context, notification domain.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

type stubGuard struct {
	claimed map[string]bool
	err     error
}

func (g *stubGuard) Claim(_ context.Context, listID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.claimed == nil {
		g.claimed = make(map[string]bool)
	}
	if g.claimed[listID] {
		return false, nil
	}
	g.claimed[listID] = true
	return true, nil
}
