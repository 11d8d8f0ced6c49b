package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesAndUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolvedPath, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolvedPath != path {
		t.Fatalf("unexpected config path: %s", resolvedPath)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("default config not written: %v", statErr)
	}

	def := Default()
	if cfg.Addr != def.Addr || cfg.Broker.Driver != def.Broker.Driver || cfg.OutboxSize != def.OutboxSize {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
addr: ":9090"
handshake_timeout: 3s
broker:
  driver: nats
  url: nats://broker:4222
users:
  - id: 1
    username: u1
    token: some_token_here
    room_id: 1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("addr not read: %s", cfg.Addr)
	}
	if cfg.HandshakeTimeout != 3*time.Second {
		t.Fatalf("handshake_timeout not read: %v", cfg.HandshakeTimeout)
	}
	if cfg.Broker.Driver != "nats" || cfg.Broker.URL != "nats://broker:4222" {
		t.Fatalf("broker config not read: %+v", cfg.Broker)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Token != "some_token_here" || cfg.Users[0].RoomID != 1 {
		t.Fatalf("users seed not read: %+v", cfg.Users)
	}
	// File left broker.subject unset; the default survives.
	if cfg.Broker.Subject != Default().Broker.Subject {
		t.Fatalf("subject default lost: %s", cfg.Broker.Subject)
	}
}

func TestUpdateFromOverridesNonZero(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":7070", LogLevel: "debug"})

	if cfg.Addr != ":7070" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ShutdownTimeout != Default().ShutdownTimeout {
		t.Fatalf("zero-value override clobbered shutdown timeout: %v", cfg.ShutdownTimeout)
	}
}
