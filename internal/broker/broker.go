// Package broker defines the publish/subscribe port that decouples message
// producers from the relay dispatcher. Transports are pluggable; delivery is
// at-least-once within a process lifetime with per-publisher FIFO ordering.
package broker

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by Publish when the underlying transport is
// down or closed. Surfaced synchronously so the producer can retry.
var ErrUnavailable = errors.New("broker unavailable")

// Envelope is the unit carried across the broker port: one message plus its
// routing key (the target room). OriginConnID is empty for messages that did
// not originate on a live socket, such as HTTP-ingested ones.
type Envelope struct {
	RoomID         int64     `json:"room_id"`
	Content        string    `json:"content"`
	OriginUserID   int64     `json:"origin_user_id"`
	OriginUsername string    `json:"origin_username,omitempty"`
	OriginConnID   string    `json:"origin_conn_id,omitempty"`
	SentAt         time.Time `json:"sent_at"`
}

// Handler is invoked once per delivered envelope.
type Handler func(Envelope)

// Broker is the abstract publish/subscribe capability.
type Broker interface {
	// Publish hands the envelope to the transport and returns without
	// waiting for any subscriber to process it.
	Publish(ctx context.Context, env Envelope) error

	// Subscribe registers a handler for delivered envelopes. Invocation
	// order matches publish order for a single publisher; no total order
	// is guaranteed across concurrent publishers.
	Subscribe(ctx context.Context, h Handler) error

	// Close shuts the transport down. Publishes after Close fail with
	// ErrUnavailable.
	Close() error
}
