// Package store holds the persistence types shared by the memory and postgres
// backends. The principal repository contract is lmsAuth.PrincipalStore.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotificationNotFound is returned when no notification matches an id.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationStatus is the read state of a notification.
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// Notification is a message shown to a principal in the dashboard.
type Notification struct {
	ID          string             `json:"id"`
	PrincipalID string             `json:"userId"`
	Title       string             `json:"title"`
	Message     string             `json:"message"`
	Status      NotificationStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NotificationStore persists notifications. ListNotifications returns newest first.
// DeleteReadBefore removes read notifications created before cutoff and
// returns how many were removed.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n Notification) (Notification, error)
	ListNotifications(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id string) (Notification, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
