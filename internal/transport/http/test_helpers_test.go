package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mavihs13/edunet-realtime/internal/auth"
	"github.com/mavihs13/edunet-realtime/internal/buffer"
	"github.com/mavihs13/edunet-realtime/internal/config"
	"github.com/mavihs13/edunet-realtime/internal/core"
)

// testJWTConfig returns the verification settings the test server uses.
func testJWTConfig() *auth.Config {
	return &auth.Config{
		Secret:   []byte("test-secret"),
		Issuer:   "edunet",
		Audience: "edunet-realtime",
		TTL:      time.Hour,
	}
}

// startTestServer runs a full transport stack over an in-memory buffer and
// no durable store.
func startTestServer(t *testing.T) (*httptest.Server, buffer.Buffer) {
	t.Helper()

	logger := zerolog.Nop()
	buf := buffer.NewMemory(buffer.Limits{})

	hub := core.NewHub(nil, buf, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, testJWTConfig(), buf, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, buf
}

// testToken issues a token the test server accepts.
func testToken(t *testing.T, userID string) string {
	t.Helper()

	token, err := auth.GenerateToken(testJWTConfig(), userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}
