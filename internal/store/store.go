package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Message is a persisted direct message.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	Read       bool
	CreatedAt  time.Time
}

// Notification is a persisted user notification.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Content   string
	Read      bool
	CreatedAt time.Time
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message to storage.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListConversation retrieves the most recent messages exchanged between
	// two users, newest last. Limit caps the number of returned rows.
	ListConversation(ctx context.Context, userA, userB string, limit int) ([]*Message, error)
}

// NotificationStore handles notification persistence.
type NotificationStore interface {
	// SaveNotification persists a notification to storage.
	SaveNotification(ctx context.Context, n *Notification) error

	// MarkNotificationRead flips the read flag on a stored notification.
	// Returns ErrNotFound if no such notification exists.
	MarkNotificationRead(ctx context.Context, id string) error
}

// Store aggregates the persistence interfaces the dispatcher calls into.
type Store interface {
	MessageStore
	NotificationStore

	// Close closes the underlying database connection.
	Close() error
}
