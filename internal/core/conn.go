package core

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultOutboxSize is the outbound channel capacity used when the caller
// does not configure one.
const DefaultOutboxSize = 16

// Conn represents one live client socket as seen by the core layer. It owns
// a bounded ordered outbound channel; on overflow the oldest queued message
// is dropped so an unresponsive peer cannot grow memory without bound.
type Conn struct {
	ID   string
	User *User

	outbox    chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewConn constructs a connection for an authenticated user. outboxSize <= 0
// falls back to DefaultOutboxSize.
func NewConn(user *User, outboxSize int) *Conn {
	if outboxSize <= 0 {
		outboxSize = DefaultOutboxSize
	}
	return &Conn{
		ID:     uuid.NewString(),
		User:   user,
		outbox: make(chan Message, outboxSize),
		done:   make(chan struct{}),
	}
}

// Send enqueues a message for delivery to the client. Reports whether the
// message was accepted; a closed connection rejects it. When the outbox is
// full the oldest queued message is evicted to make room.
//
// Send is invoked only from the dispatcher goroutine, so eviction cannot
// race with another producer.
func (c *Conn) Send(msg Message) bool {
	for {
		select {
		case <-c.done:
			return false
		case c.outbox <- msg:
			return true
		default:
			select {
			case <-c.outbox:
			default:
			}
		}
	}
}

// Outbox is drained by the connection's write loop.
func (c *Conn) Outbox() <-chan Message {
	return c.outbox
}

// Done is closed when the connection shuts down, unblocking both loops.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close marks the connection dead. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
