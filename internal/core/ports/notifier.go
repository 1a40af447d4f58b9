package ports

import (
	"context"
	"time"
)

type NotificationKind string

const (
	NotifyWelcome      NotificationKind = "welcome"
	NotifyCancellation NotificationKind = "cancellation"
)

// AccountNotification is handed to the external mailer.
type AccountNotification struct {
	Kind   NotificationKind `json:"kind"`
	UserID string           `json:"user_id"`
	Email  string           `json:"email"`
	Name   string           `json:"name"`
	At     time.Time        `json:"at"`
}

// Notifier accepts notifications without blocking the caller.
type Notifier interface {
	Enqueue(n AccountNotification)
}

// NotificationPublisher delivers a notification to the outbound channel.
type NotificationPublisher interface {
	Publish(ctx context.Context, n AccountNotification) error
}
