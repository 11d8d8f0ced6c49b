package core

import "sync"

// RoomCapacity is the hard cap on concurrent members per room.
const RoomCapacity = 2

// Registry tracks live connections per room and is the single source of
// truth for who is currently reachable in a room. Membership mutation is
// mutually exclusive per room; rooms do not contend with each other.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int64]*room
}

type room struct {
	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool // set when the emptied room is removed from the registry
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[int64]*room)}
}

// Join admits a connection into a room. Returns ErrRoomFull when the room
// already holds RoomCapacity members. Atomic with respect to concurrent
// joins on the same room: of two racing attempts at the last free slot,
// exactly one succeeds.
func (r *Registry) Join(roomID int64, c *Conn) error {
	for {
		rm := r.roomEntry(roomID)

		rm.mu.Lock()
		if rm.closed {
			// Lost a race with the last leave; the entry was removed.
			rm.mu.Unlock()
			continue
		}
		if len(rm.conns) >= RoomCapacity {
			rm.mu.Unlock()
			return ErrRoomFull
		}
		rm.conns[c] = struct{}{}
		rm.mu.Unlock()
		return nil
	}
}

// Leave removes a connection from a room. Idempotent: leaving a connection
// that is not registered is a no-op. The room entry is torn down when the
// last member leaves.
func (r *Registry) Leave(roomID int64, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return
	}

	rm.mu.Lock()
	delete(rm.conns, c)
	if len(rm.conns) == 0 {
		rm.closed = true
		delete(r.rooms, roomID)
	}
	rm.mu.Unlock()
}

// Members returns a snapshot of the room's live connections. Joins and
// leaves started after the snapshot is taken do not affect the result.
func (r *Registry) Members(roomID int64) []*Conn {
	r.mu.RLock()
	rm, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	members := make([]*Conn, 0, len(rm.conns))
	for c := range rm.conns {
		members = append(members, c)
	}
	return members
}

func (r *Registry) roomEntry(roomID int64) *room {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{conns: make(map[*Conn]struct{})}
		r.rooms[roomID] = rm
	}
	return rm
}
