package config

import "time"

// BrokerConfig selects and configures the message broker transport.
type BrokerConfig struct {
	// Driver is "memory" or "nats".
	Driver  string `mapstructure:"driver" yaml:"driver"`
	URL     string `mapstructure:"url" yaml:"url"`
	Subject string `mapstructure:"subject" yaml:"subject"`
}

// SeedUser is a provisioned user entry upserted into the store at startup.
type SeedUser struct {
	ID       int64  `mapstructure:"id" yaml:"id"`
	Username string `mapstructure:"username" yaml:"username"`
	Token    string `mapstructure:"token" yaml:"token"`
	RoomID   int64  `mapstructure:"room_id" yaml:"room_id"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	OutboxSize        int           `mapstructure:"outbox_size" yaml:"outbox_size"`
	IngestRateLimit   int           `mapstructure:"ingest_rate_limit" yaml:"ingest_rate_limit"`
	Broker            BrokerConfig  `mapstructure:"broker" yaml:"broker"`
	Users             []SeedUser    `mapstructure:"users" yaml:"users"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "pairline.db",
		OutboxSize:        16,
		IngestRateLimit:   120,
		Broker: BrokerConfig{
			Driver:  "memory",
			URL:     "nats://localhost:4222",
			Subject: "pairline.messages",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.HandshakeTimeout != 0 {
		c.HandshakeTimeout = other.HandshakeTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
}
