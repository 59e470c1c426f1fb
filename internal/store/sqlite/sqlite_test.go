package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mavihs13/edunet-realtime/internal/store"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListConversation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	msgs := []*store.Message{
		{ID: "m1", SenderID: "alice", ReceiverID: "bob", Content: "hi", CreatedAt: base},
		{ID: "m2", SenderID: "bob", ReceiverID: "alice", Content: "hey", CreatedAt: base.Add(time.Second)},
		{ID: "m3", SenderID: "alice", ReceiverID: "carol", Content: "other thread", CreatedAt: base.Add(2 * time.Second)},
		{ID: "m4", SenderID: "alice", ReceiverID: "bob", Content: "how are you?", CreatedAt: base.Add(3 * time.Second)},
	}
	for _, m := range msgs {
		if err := s.SaveMessage(ctx, m); err != nil {
			t.Fatalf("save %s: %v", m.ID, err)
		}
	}

	got, err := s.ListConversation(ctx, "alice", "bob", 10)
	if err != nil {
		t.Fatalf("list conversation: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	// Oldest first, carol's thread excluded.
	wantIDs := []string{"m1", "m2", "m4"}
	for i, m := range got {
		if m.ID != wantIDs[i] {
			t.Fatalf("message %d: want %s, got %s", i, wantIDs[i], m.ID)
		}
	}

	// Limit keeps the most recent rows.
	got, err = s.ListConversation(ctx, "bob", "alice", 2)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m2" || got[1].ID != "m4" {
		t.Fatalf("unexpected limited result: %+v", got)
	}
}

func TestSaveAndMarkNotificationRead(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	n := &store.Notification{
		ID:        "n1",
		UserID:    "bob",
		Type:      "like",
		Title:     "New like",
		Content:   "alice liked your post",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.SaveNotification(ctx, n); err != nil {
		t.Fatalf("save notification: %v", err)
	}

	if err := s.MarkNotificationRead(ctx, "n1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	var read bool
	if err := s.db.QueryRowContext(ctx, `SELECT read FROM notifications WHERE id = ?`, "n1").Scan(&read); err != nil {
		t.Fatalf("query read flag: %v", err)
	}
	if !read {
		t.Fatal("notification not marked read")
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.MarkNotificationRead(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
