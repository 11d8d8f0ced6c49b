package core

import (
	"testing"
	"time"
)

func mustMessage(t *testing.T, c *Conn) Message {
	t.Helper()

	select {
	case msg := <-c.Outbox():
		return msg
	case <-time.After(2 * time.Second):
	}
	t.Fatalf("expected message on conn %s not received", c.ID)
	return Message{}
}

func mustNoMessage(t *testing.T, c *Conn) {
	t.Helper()

	select {
	case msg := <-c.Outbox():
		t.Fatalf("unexpected message on conn %s: %+v", c.ID, msg)
	case <-time.After(100 * time.Millisecond):
	}
}
