package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mavihs13/edunet-realtime/internal/proto"
)

func wsURL(ts string, token string) string {
	url := strings.Replace(ts, "http", "ws", 1) + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return url
}

func dialJoined(ctx context.Context, t *testing.T, tsURL, userID string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, wsURL(tsURL, testToken(t, userID)), nil)
	if err != nil {
		t.Fatalf("dial %s: %v", userID, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	payload, _ := json.Marshal(proto.JoinData{User: userID})
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: payload}); err != nil {
		t.Fatalf("join %s: %v", userID, err)
	}
	return conn
}

// readUntilEvent discards outbound frames until one matches the event name.
func readUntilEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read waiting for %s: %v", event, err)
		}
		if outbound.Type == proto.OutboundTypeEvent && outbound.Event == event {
			return outbound.Data
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWSRejectsMissingToken(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL(ts.URL, ""), nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestWSJoinSendAndAck(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialJoined(ctx, t, ts.URL, "alice")
	bob := dialJoined(ctx, t, ts.URL, "bob")

	// Wait until bob's join is processed before targeting him.
	readUntilEvent(ctx, t, alice, proto.EventUserOnline)

	payload, _ := json.Marshal(proto.SendMessageData{ReceiverID: "bob", Content: "hi there"})
	if err := wsjson.Write(ctx, alice, proto.Inbound{Type: proto.InboundTypeSendMessage, Data: payload}); err != nil {
		t.Fatalf("send message: %v", err)
	}

	var delivered proto.MessageData
	if err := json.Unmarshal(readUntilEvent(ctx, t, bob, proto.EventNewMessage), &delivered); err != nil {
		t.Fatalf("unmarshal new_message: %v", err)
	}
	if delivered.SenderID != "alice" || delivered.Content != "hi there" {
		t.Fatalf("unexpected delivery: %+v", delivered)
	}

	var ack proto.MessageData
	if err := json.Unmarshal(readUntilEvent(ctx, t, alice, proto.EventMessageSent), &ack); err != nil {
		t.Fatalf("unmarshal message_sent: %v", err)
	}
	if ack.ID != delivered.ID || ack.Uncertain {
		t.Fatalf("unexpected ack: %+v", ack)
	}
}

func TestWSPresenceBroadcast(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialJoined(ctx, t, ts.URL, "alice")
	bob := dialJoined(ctx, t, ts.URL, "bob")

	// Alice was connected first, so she observes bob coming online.
	var online proto.PresenceData
	if err := json.Unmarshal(readUntilEvent(ctx, t, alice, proto.EventUserOnline), &online); err != nil {
		t.Fatalf("unmarshal user_online: %v", err)
	}
	if online.UserID != "bob" {
		t.Fatalf("unexpected online user: %s", online.UserID)
	}

	bob.Close(websocket.StatusNormalClosure, "bye")

	var offline proto.PresenceData
	if err := json.Unmarshal(readUntilEvent(ctx, t, alice, proto.EventUserOffline), &offline); err != nil {
		t.Fatalf("unmarshal user_offline: %v", err)
	}
	if offline.UserID != "bob" {
		t.Fatalf("unexpected offline user: %s", offline.UserID)
	}
}

func TestWSMalformedEventKeepsConnectionOpen(t *testing.T) {
	ts, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialJoined(ctx, t, ts.URL, "alice")

	// Missing receiver: protocol error comes back, session survives.
	payload, _ := json.Marshal(proto.SendMessageData{Content: "hi"})
	if err := wsjson.Write(ctx, alice, proto.Inbound{Type: proto.InboundTypeSendMessage, Data: payload}); err != nil {
		t.Fatalf("send malformed: %v", err)
	}

	var outbound proto.Outbound
	for {
		var frame struct {
			Type  string       `json:"type"`
			Error *proto.Error `json:"error"`
		}
		if err := wsjson.Read(ctx, alice, &frame); err != nil {
			t.Fatalf("read error frame: %v", err)
		}
		if frame.Type == proto.OutboundTypeError {
			outbound.Error = frame.Error
			break
		}
	}
	if outbound.Error == nil || outbound.Error.Code == "" {
		t.Fatal("expected coded protocol error")
	}

	// Connection still works.
	bob := dialJoined(ctx, t, ts.URL, "bob")
	readUntilEvent(ctx, t, alice, proto.EventUserOnline)
	payload, _ = json.Marshal(proto.SendMessageData{ReceiverID: "bob", Content: "still alive"})
	if err := wsjson.Write(ctx, alice, proto.Inbound{Type: proto.InboundTypeSendMessage, Data: payload}); err != nil {
		t.Fatalf("send after error: %v", err)
	}
	var delivered proto.MessageData
	if err := json.Unmarshal(readUntilEvent(ctx, t, bob, proto.EventNewMessage), &delivered); err != nil {
		t.Fatalf("unmarshal new_message: %v", err)
	}
	if delivered.Content != "still alive" {
		t.Fatalf("unexpected delivery: %+v", delivered)
	}
}
