package core

// User is a provisioned identity: an opaque bearer token bound to a fixed
// room assignment. Users are loaded once at startup and never mutated, so
// the struct is safe to share across goroutines.
type User struct {
	ID       int64
	Username string
	Token    string
	RoomID   int64
}
