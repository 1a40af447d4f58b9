package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskmanager/task-api/internal/core/ports"
)

const (
	// NotificationQueue is the list the external mailer pops from.
	NotificationQueue = "notifications:email"
	dedupTTL          = time.Hour
)

// NotificationPublisher pushes account notifications onto a Redis list.
// Each (kind, user) pair is published at most once per dedupTTL.
// Key format: notify:<kind>:<user_id>
type NotificationPublisher struct {
	client *redis.Client
}

func NewNotificationPublisher(client *redis.Client) *NotificationPublisher {
	return &NotificationPublisher{client: client}
}

// Publish claims the dedup key and, if it was free, enqueues the payload.
// If the push fails the key is released so a retry can go through.
func (p *NotificationPublisher) Publish(ctx context.Context, n ports.AccountNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	key := p.key(n)
	fresh, err := p.client.SetNX(ctx, key, "1", dedupTTL).Result()
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if !fresh {
		return nil
	}

	if err := p.client.RPush(ctx, NotificationQueue, payload).Err(); err != nil {
		_ = p.client.Del(ctx, key).Err()
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

func (p *NotificationPublisher) key(n ports.AccountNotification) string {
	return fmt.Sprintf("notify:%s:%s", n.Kind, n.UserID)
}
