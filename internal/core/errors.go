package core

import "errors"

// Error codes surfaced to clients over the wire protocol.
const (
	ErrCodeRoomFull     = "room_full"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnavailable  = "unavailable"
)

var (
	// ErrRoomFull is returned by Registry.Join when the room already has
	// two members. A third join attempt is rejected, never queued.
	ErrRoomFull = errors.New("room full")
	// ErrNoRecipients reports a dispatch that found no live members in the
	// target room. Observational only; never fails the producing request.
	ErrNoRecipients = errors.New("no recipients")
)
