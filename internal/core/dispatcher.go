package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pairline/pairline-server/internal/broker"
)

// Dispatcher consumes broker envelopes and fans each one out to the live
// connections of its target room. Delivery to each member is independent: a
// slow or closed connection never blocks the other.
type Dispatcher struct {
	registry *Registry
	log      *zerolog.Logger
}

// NewDispatcher builds a dispatcher over the given registry.
func NewDispatcher(registry *Registry, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, log: logger}
}

// Run subscribes the dispatcher to the broker. Delivery continues until the
// context is cancelled or the broker shuts down.
func (d *Dispatcher) Run(ctx context.Context, b broker.Broker) error {
	return b.Subscribe(ctx, d.Dispatch)
}

// Dispatch delivers one envelope. An empty member snapshot drops the message
// with a log line; broker redelivery, if any, is the transport's concern. A
// message is never echoed back to its own originating connection.
func (d *Dispatcher) Dispatch(env broker.Envelope) {
	members := d.registry.Members(env.RoomID)
	if len(members) == 0 {
		d.log.Debug().
			Err(ErrNoRecipients).
			Int64("room_id", env.RoomID).
			Int64("origin_user_id", env.OriginUserID).
			Msg("message dropped")
		return
	}

	msg := Message{
		Content:  env.Content,
		RoomID:   env.RoomID,
		FromID:   env.OriginUserID,
		FromName: env.OriginUsername,
		SentAt:   env.SentAt,
	}

	delivered := 0
	for _, c := range members {
		if env.OriginConnID != "" && c.ID == env.OriginConnID {
			continue
		}
		if c.Send(msg) {
			delivered++
		}
	}

	d.log.Debug().
		Int64("room_id", env.RoomID).
		Int("delivered", delivered).
		Msg("message dispatched")
}
