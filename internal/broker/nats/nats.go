// Package nats provides a broker transport backed by a NATS server. Every
// envelope travels as a JSON payload on a single configurable subject; NATS
// guarantees per-publisher FIFO delivery, matching the port contract.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/pairline/pairline-server/internal/broker"
)

// Config holds NATS transport settings.
type Config struct {
	URL     string
	Subject string
}

// DefaultConfig returns settings for a local NATS server.
func DefaultConfig() Config {
	return Config{
		URL:     nats.DefaultURL,
		Subject: "pairline.messages",
	}
}

// Broker implements broker.Broker on top of a NATS connection.
type Broker struct {
	nc      *nats.Conn
	subject string
	log     *zerolog.Logger
	subs    []*nats.Subscription
}

// Connect dials the NATS server and returns a ready transport.
func Connect(cfg Config, logger *zerolog.Logger) (*Broker, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	logger.Info().Str("url", cfg.URL).Str("subject", cfg.Subject).Msg("nats broker connected")
	return &Broker{nc: nc, subject: cfg.Subject, log: logger}, nil
}

// Publish sends the envelope to the configured subject. A disconnected
// transport fails with broker.ErrUnavailable so the producer can retry.
func (b *Broker) Publish(_ context.Context, env broker.Envelope) error {
	if !b.nc.IsConnected() {
		return broker.ErrUnavailable
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := b.nc.Publish(b.subject, data); err != nil {
		return broker.ErrUnavailable
	}
	return nil
}

// Subscribe registers a handler for envelopes on the subject. Payloads that
// fail to decode are logged and skipped rather than stalling the stream.
func (b *Broker) Subscribe(ctx context.Context, h broker.Handler) error {
	sub, err := b.nc.Subscribe(b.subject, func(m *nats.Msg) {
		var env broker.Envelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			b.log.Warn().Err(err).Str("subject", m.Subject).Msg("drop undecodable envelope")
			return
		}
		h(env)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.subject, err)
	}
	b.subs = append(b.subs, sub)

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			b.log.Warn().Err(err).Msg("nats unsubscribe")
		}
	}()
	return nil
}

// Close drains the connection, letting in-flight envelopes finish.
func (b *Broker) Close() error {
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
		return fmt.Errorf("drain nats: %w", err)
	}
	return nil
}
