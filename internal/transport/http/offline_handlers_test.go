package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mavihs13/edunet-realtime/internal/proto"
)

func apiGet(t *testing.T, ts string, path, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestOfflineDrainRequiresToken(t *testing.T) {
	ts, _ := startTestServer(t)

	resp := apiGet(t, ts.URL, "/api/offline/messages", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestOfflineDrainReturnsBufferedMessages(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialJoined(ctx, t, ts.URL, "alice")

	// Bob has no live connection; both sends land in his buffer.
	for _, text := range []string{"first", "second"} {
		payload, _ := json.Marshal(proto.SendMessageData{ReceiverID: "bob", Content: text})
		if err := wsjson.Write(ctx, alice, proto.Inbound{Type: proto.InboundTypeSendMessage, Data: payload}); err != nil {
			t.Fatalf("send %q: %v", text, err)
		}
		readUntilEvent(ctx, t, alice, proto.EventMessageSent)
	}

	resp := apiGet(t, ts.URL, "/api/offline/messages", testToken(t, "bob"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var drained DrainResponse
	if err := json.NewDecoder(resp.Body).Decode(&drained); err != nil {
		t.Fatalf("decode drain response: %v", err)
	}
	if len(drained.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(drained.Items))
	}

	// Items are serialized domain records.
	var first, second struct {
		SenderID string `json:"sender_id"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(drained.Items[0], &first); err != nil {
		t.Fatalf("unmarshal item 0: %v", err)
	}
	if err := json.Unmarshal(drained.Items[1], &second); err != nil {
		t.Fatalf("unmarshal item 1: %v", err)
	}
	if first.Content != "first" || second.Content != "second" {
		t.Fatalf("items out of send order: %q then %q", first.Content, second.Content)
	}
	if first.SenderID != "alice" {
		t.Fatalf("unexpected sender: %s", first.SenderID)
	}

	// Drained items are cleared.
	resp = apiGet(t, ts.URL, "/api/offline/messages", testToken(t, "bob"))
	var again DrainResponse
	if err := json.NewDecoder(resp.Body).Decode(&again); err != nil {
		t.Fatalf("decode second drain: %v", err)
	}
	if len(again.Items) != 0 {
		t.Fatalf("expected empty drain, got %d items", len(again.Items))
	}
}

func TestPresenceEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialJoined(ctx, t, ts.URL, "alice")
	// Wait until the join is processed.
	time.Sleep(100 * time.Millisecond)

	resp := apiGet(t, ts.URL, "/api/presence/alice", testToken(t, "viewer"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var status PresenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode presence: %v", err)
	}
	if !status.IsOnline {
		t.Fatal("alice reported offline while connected")
	}

	resp = apiGet(t, ts.URL, "/api/presence/nobody", testToken(t, "viewer"))
	var missing PresenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&missing); err != nil {
		t.Fatalf("decode presence: %v", err)
	}
	if missing.IsOnline {
		t.Fatal("unknown user reported online")
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}
