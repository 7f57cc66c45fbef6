package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = 24 * time.Hour

type setNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// NotificationGuard records which lists already had their notification
// attempted. Key format: notify:<list_id>
type NotificationGuard struct {
	client setNXer
	ttl    time.Duration
}

func NewNotificationGuard(client redis.UniversalClient, ttl time.Duration) *NotificationGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &NotificationGuard{client: client, ttl: ttl}
}

// Claim returns true only for the first caller for a given list id.
func (g *NotificationGuard) Claim(ctx context.Context, listID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardKey(listID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("notify claim: %w", err)
	}
	return ok, nil
}

func guardKey(listID string) string {
	return "notify:" + listID
}
