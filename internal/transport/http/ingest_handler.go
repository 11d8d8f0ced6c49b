package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pairline/pairline-server/internal/broker"
)

// IngestHandler accepts producer messages over HTTP and publishes them to
// the broker. It is strictly a producer: it never touches the room registry,
// so "a message exists" stays decoupled from "a message is deliverable".
type IngestHandler struct {
	broker  broker.Broker
	limiter *rateLimiter
	log     *zerolog.Logger
}

// NewIngestHandler creates an ingestion handler with an optional per-minute
// rate limit (0 disables it).
func NewIngestHandler(b broker.Broker, rateLimit int, logger *zerolog.Logger) *IngestHandler {
	return &IngestHandler{
		broker:  b,
		limiter: newRateLimiter(rateLimit),
		log:     logger,
	}
}

// StartRateReset starts the limiter's reset ticker; stop ends it.
func (h *IngestHandler) StartRateReset(stop <-chan struct{}) {
	h.limiter.startReset(stop)
}

// SubmitRequest represents the message submission body.
type SubmitRequest struct {
	Content string `json:"content" binding:"required"`
}

// SubmitResponse acknowledges an accepted message.
type SubmitResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Submit handles message ingestion.
// POST /messages
//
// 202 once the envelope is handed to the broker; delivery is not awaited.
// The target room is derived from the authenticated user's assignment.
func (h *IngestHandler) Submit(c *gin.Context) {
	user, ok := userFromContext(c)
	if !ok {
		h.log.Error().Msg("user not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	if !h.limiter.allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid submit request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	env := broker.Envelope{
		RoomID:         user.RoomID,
		Content:        req.Content,
		OriginUserID:   user.ID,
		OriginUsername: user.Username,
		SentAt:         time.Now(),
	}

	if err := h.broker.Publish(c.Request.Context(), env); err != nil {
		if errors.Is(err, broker.ErrUnavailable) {
			h.log.Warn().Int64("room_id", user.RoomID).Msg("broker unavailable")
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "broker unavailable"})
			return
		}
		h.log.Error().Err(err).Int64("room_id", user.RoomID).Msg("failed to publish message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Debug().
		Int64("user_id", user.ID).
		Int64("room_id", user.RoomID).
		Msg("message accepted")
	c.JSON(http.StatusAccepted, SubmitResponse{Status: "accepted"})
}
