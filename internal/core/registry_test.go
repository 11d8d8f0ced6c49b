package core

import (
	"errors"
	"sync"
	"testing"
)

func testUser(id, roomID int64, name string) *User {
	return &User{ID: id, Username: name, Token: name + "-token", RoomID: roomID}
}

func TestRegistryCapacity(t *testing.T) {
	reg := NewRegistry()

	a := NewConn(testUser(1, 1, "alice"), 0)
	b := NewConn(testUser(2, 1, "bob"), 0)
	c := NewConn(testUser(3, 1, "carol"), 0)

	if err := reg.Join(1, a); err != nil {
		t.Fatalf("join a: %v", err)
	}
	if err := reg.Join(1, b); err != nil {
		t.Fatalf("join b: %v", err)
	}
	if err := reg.Join(1, c); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull for third join, got %v", err)
	}

	if got := len(reg.Members(1)); got != 2 {
		t.Fatalf("expected 2 members, got %d", got)
	}
}

func TestRegistryConcurrentJoinLastSlot(t *testing.T) {
	reg := NewRegistry()

	first := NewConn(testUser(1, 1, "alice"), 0)
	if err := reg.Join(1, first); err != nil {
		t.Fatalf("join first: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := range racers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = reg.Join(1, NewConn(testUser(int64(10+i), 1, "racer"), 0))
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, ErrRoomFull):
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	if admitted != 1 {
		t.Fatalf("expected exactly 1 racer admitted, got %d", admitted)
	}
	if got := len(reg.Members(1)); got != 2 {
		t.Fatalf("expected 2 members after race, got %d", got)
	}
}

func TestRegistryLeaveIdempotent(t *testing.T) {
	reg := NewRegistry()

	a := NewConn(testUser(1, 1, "alice"), 0)
	if err := reg.Join(1, a); err != nil {
		t.Fatalf("join: %v", err)
	}

	reg.Leave(1, a)
	reg.Leave(1, a) // double-close must be a no-op
	reg.Leave(99, a)

	if got := len(reg.Members(1)); got != 0 {
		t.Fatalf("expected empty room, got %d members", got)
	}
}

func TestRegistryRoomReusableAfterTeardown(t *testing.T) {
	reg := NewRegistry()

	a := NewConn(testUser(1, 1, "alice"), 0)
	if err := reg.Join(1, a); err != nil {
		t.Fatalf("join: %v", err)
	}
	reg.Leave(1, a)

	b := NewConn(testUser(2, 1, "bob"), 0)
	if err := reg.Join(1, b); err != nil {
		t.Fatalf("rejoin after teardown: %v", err)
	}
	if got := len(reg.Members(1)); got != 1 {
		t.Fatalf("expected 1 member, got %d", got)
	}
}

func TestRegistryMembersIsSnapshot(t *testing.T) {
	reg := NewRegistry()

	a := NewConn(testUser(1, 1, "alice"), 0)
	if err := reg.Join(1, a); err != nil {
		t.Fatalf("join: %v", err)
	}

	snapshot := reg.Members(1)

	b := NewConn(testUser(2, 1, "bob"), 0)
	if err := reg.Join(1, b); err != nil {
		t.Fatalf("join b: %v", err)
	}

	if len(snapshot) != 1 {
		t.Fatalf("snapshot changed after later join: %d members", len(snapshot))
	}
}

func TestRegistryRoomsIndependent(t *testing.T) {
	reg := NewRegistry()

	for room := int64(1); room <= 3; room++ {
		for i := int64(0); i < RoomCapacity; i++ {
			c := NewConn(testUser(room*10+i, room, "u"), 0)
			if err := reg.Join(room, c); err != nil {
				t.Fatalf("join room %d: %v", room, err)
			}
		}
	}

	for room := int64(1); room <= 3; room++ {
		if got := len(reg.Members(room)); got != RoomCapacity {
			t.Fatalf("room %d: expected %d members, got %d", room, RoomCapacity, got)
		}
	}
}
