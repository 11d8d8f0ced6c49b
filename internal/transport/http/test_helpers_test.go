package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pairline/pairline-server/internal/auth"
	"github.com/pairline/pairline-server/internal/broker/memory"
	"github.com/pairline/pairline-server/internal/config"
	"github.com/pairline/pairline-server/internal/core"
)

type testEnv struct {
	ts       *httptest.Server
	broker   *memory.Broker
	registry *core.Registry
}

func (e *testEnv) wsURL(path string) string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + path
}

// waitForMembers polls until the room holds n live connections.
func (e *testEnv) waitForMembers(t *testing.T, roomID int64, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(e.registry.Members(roomID)) == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %d never reached %d members", roomID, n)
}

// startTestServer wires a full relay over the in-memory broker with the
// provisioned test users.
func startTestServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.Nop()
	resolver := auth.NewResolver([]*core.User{
		{ID: 1, Username: "u1", Token: "some_token_here", RoomID: 1},
		{ID: 2, Username: "u2", Token: "some_other_token", RoomID: 1},
		{ID: 3, Username: "u3", Token: "third_room_one_token", RoomID: 1},
		{ID: 4, Username: "u4", Token: "room_two_token", RoomID: 2},
	})

	registry := core.NewRegistry()
	b := memory.New()
	t.Cleanup(func() { b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dispatcher := core.NewDispatcher(registry, &logger)
	if err := dispatcher.Run(ctx, b); err != nil {
		t.Fatalf("run dispatcher: %v", err)
	}

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.HandshakeTimeout = time.Second
	cfg.IngestRateLimit = 0

	server, _ := NewServer(cfg, resolver, registry, b, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, broker: b, registry: registry}
}
