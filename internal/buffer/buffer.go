// Package buffer implements the per-user offline delivery queue. Items the
// dispatcher could not (or chose not to only) deliver live are pushed to the
// head of a per-user list and drained in arrival order through a REST pull
// path once the user is back.
package buffer

import (
	"context"
	"sync"
	"time"
)

// Kind namespaces buffered items per recipient.
type Kind string

const (
	KindMessages      Kind = "messages"
	KindNotifications Kind = "notifications"
)

// Limits bounds per-user buffer growth.
type Limits struct {
	// MaxItems caps the number of buffered items per user and kind; older
	// items are trimmed on enqueue.
	MaxItems int
	// TTL expires a user's whole list after inactivity.
	TTL time.Duration
}

// DefaultLimits returns the bounds used when config leaves them unset.
func DefaultLimits() Limits {
	return Limits{
		MaxItems: 500,
		TTL:      7 * 24 * time.Hour,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxItems <= 0 {
		l.MaxItems = d.MaxItems
	}
	if l.TTL <= 0 {
		l.TTL = d.TTL
	}
	return l
}

// Buffer queues serialized events for users with no live connection.
type Buffer interface {
	// Enqueue pushes a serialized item to the head of the user's list
	// (newest first), trimming past MaxItems.
	Enqueue(ctx context.Context, kind Kind, userID string, payload []byte) error

	// Drain returns all buffered items for the user in arrival order
	// (oldest first) and clears the list.
	Drain(ctx context.Context, kind Kind, userID string) ([][]byte, error)
}

func key(kind Kind, userID string) string {
	return string(kind) + ":" + userID
}

type memoryEntry struct {
	items    [][]byte
	deadline time.Time
}

// Memory is an in-process Buffer used in tests and redis-less dev runs.
type Memory struct {
	mu     sync.Mutex
	limits Limits
	lists  map[string]*memoryEntry
}

// NewMemory constructs an in-memory buffer with the given limits.
func NewMemory(limits Limits) *Memory {
	return &Memory{
		limits: limits.withDefaults(),
		lists:  make(map[string]*memoryEntry),
	}
}

// Enqueue pushes the payload to the head of the user's list.
func (m *Memory) Enqueue(_ context.Context, kind Kind, userID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(kind, userID)
	entry := m.lists[k]
	if entry == nil || time.Now().After(entry.deadline) {
		entry = &memoryEntry{}
		m.lists[k] = entry
	}

	item := make([]byte, len(payload))
	copy(item, payload)

	entry.items = append([][]byte{item}, entry.items...)
	if len(entry.items) > m.limits.MaxItems {
		entry.items = entry.items[:m.limits.MaxItems]
	}
	entry.deadline = time.Now().Add(m.limits.TTL)
	return nil
}

// Drain returns buffered items oldest first and clears the list.
func (m *Memory) Drain(_ context.Context, kind Kind, userID string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(kind, userID)
	entry := m.lists[k]
	if entry == nil {
		return nil, nil
	}
	delete(m.lists, k)
	if time.Now().After(entry.deadline) {
		return nil, nil
	}

	// Stored newest first; reverse into arrival order.
	out := make([][]byte, 0, len(entry.items))
	for i := len(entry.items) - 1; i >= 0; i-- {
		out = append(out, entry.items[i])
	}
	return out, nil
}
