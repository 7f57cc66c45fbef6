package memory

import (
	"context"
	"sync"
	"time"
)

// NotificationGuard remembers claimed list ids for ttl.
type NotificationGuard struct {
	mu      sync.Mutex
	ttl     time.Duration
	claimed map[string]time.Time
	now     func() time.Time
}

func NewNotificationGuard(ttl time.Duration) *NotificationGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &NotificationGuard{ttl: ttl, claimed: make(map[string]time.Time), now: time.Now}
}

func (g *NotificationGuard) Claim(_ context.Context, listID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if exp, ok := g.claimed[listID]; ok && now.Before(exp) {
		return false, nil
	}
	g.claimed[listID] = now.Add(g.ttl)
	return true, nil
}

// TokenRevoker keeps revoked token ids until they would have expired anyway.
type TokenRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenRevoker() *TokenRevoker {
	return &TokenRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *TokenRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, exp := range r.revoked {
		if !now.Before(exp) {
			delete(r.revoked, id)
		}
	}
	r.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (r *TokenRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.revoked[tokenID]
	return ok && r.now().Before(exp), nil
}
