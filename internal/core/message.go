package core

import "time"

// Message is the domain model for a relayed chat message. It is immutable
// after creation and owned by whichever pipeline stage is processing it.
type Message struct {
	Content  string
	RoomID   int64
	FromID   int64
	FromName string
	SentAt   time.Time
}
