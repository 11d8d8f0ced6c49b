package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pairline/pairline-server/internal/broker"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got := make(chan string, 8)
	if err := b.Subscribe(ctx, func(env broker.Envelope) {
		got <- env.Content
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	for i := 1; i <= 4; i++ {
		if err := b.Publish(ctx, broker.Envelope{RoomID: 1, Content: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("publish m%d: %v", i, err)
		}
	}

	for i := 1; i <= 4; i++ {
		want := fmt.Sprintf("m%d", i)
		select {
		case content := <-got:
			if content != want {
				t.Fatalf("expected %s, got %s", want, content)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestPublishFansOutToAllHandlers(t *testing.T) {
	b := New()
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	first := make(chan broker.Envelope, 1)
	second := make(chan broker.Envelope, 1)
	if err := b.Subscribe(ctx, func(env broker.Envelope) { first <- env }); err != nil {
		t.Fatalf("subscribe first: %v", err)
	}
	if err := b.Subscribe(ctx, func(env broker.Envelope) { second <- env }); err != nil {
		t.Fatalf("subscribe second: %v", err)
	}

	if err := b.Publish(ctx, broker.Envelope{RoomID: 1, Content: "hi"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, ch := range []chan broker.Envelope{first, second} {
		select {
		case env := <-ch:
			if env.Content != "hi" {
				t.Fatalf("unexpected envelope: %+v", env)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not receive envelope")
		}
	}
}

func TestPublishAfterCloseUnavailable(t *testing.T) {
	b := New()
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	err := b.Publish(context.Background(), broker.Envelope{RoomID: 1, Content: "late"})
	if !errors.Is(err, broker.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSubscribeAfterCloseUnavailable(t *testing.T) {
	b := New()
	b.Close()
	b.Close() // idempotent

	err := b.Subscribe(context.Background(), func(broker.Envelope) {})
	if !errors.Is(err, broker.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
