package http

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pairline/pairline-server/internal/auth"
	"github.com/pairline/pairline-server/internal/broker"
	"github.com/pairline/pairline-server/internal/core"
	"github.com/pairline/pairline-server/internal/proto"
)

// StatusRoomFull is the application close code sent when the target room
// already holds two members.
const StatusRoomFull = websocket.StatusCode(4002)

// WSHandler upgrades realtime connections and runs one session per socket:
// a read loop publishing client input to the broker and a write loop
// draining the connection's outbox.
type WSHandler struct {
	resolver *auth.Resolver
	registry *core.Registry
	broker   broker.Broker

	outboxSize       int
	handshakeTimeout time.Duration
	log              *zerolog.Logger
}

// NewWSHandler builds a new realtime connection handler.
func NewWSHandler(resolver *auth.Resolver, registry *core.Registry, b broker.Broker, outboxSize int, handshakeTimeout time.Duration, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		resolver:         resolver,
		registry:         registry,
		broker:           b,
		outboxSize:       outboxSize,
		handshakeTimeout: handshakeTimeout,
		log:              logger,
	}
}

// Handle serves GET /rooms/:room_id/socket?token=<token>.
//
// The token resolves before the upgrade; when it fails, the upgrade is
// completed only to transmit the 1008 close frame, and no registry
// resources are allocated. The room id must match the authenticated user's
// assigned room; the client cannot pick a different one.
func (h *WSHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	roomID, parseErr := strconv.ParseInt(c.Param("room_id"), 10, 64)
	user, authErr := h.resolver.Resolve(c.Query("token"))

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if authErr != nil {
		h.log.Debug().Err(authErr).Msg("ws auth rejected")
		h.reject(conn, websocket.StatusPolicyViolation, core.ErrCodeUnauthorized)
		return
	}
	if parseErr != nil || roomID != user.RoomID {
		h.log.Debug().
			Int64("user_id", user.ID).
			Str("room_param", c.Param("room_id")).
			Msg("ws room mismatch")
		h.reject(conn, websocket.StatusPolicyViolation, "room not assigned to user")
		return
	}

	sess := core.NewConn(user, h.outboxSize)
	if joinErr := h.registry.Join(roomID, sess); joinErr != nil {
		h.log.Info().
			Int64("user_id", user.ID).
			Int64("room_id", roomID).
			Msg("ws join rejected: room full")
		h.reject(conn, StatusRoomFull, core.ErrCodeRoomFull)
		return
	}
	defer h.registry.Leave(roomID, sess)
	defer sess.Close()

	h.log.Info().
		Str("conn_id", sess.ID).
		Int64("user_id", user.ID).
		Int64("room_id", roomID).
		Msg("ws session open")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sess)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sess)
	}()

	err = <-errCh
	cancel()
	sess.Close() // unblock the other loop promptly
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", sess.ID).Msg("ws connection closed with error")
		}
	}

	h.log.Info().Str("conn_id", sess.ID).Int64("room_id", roomID).Msg("ws session closed")
	conn.Close(status, reason)
}

// reject completes the close handshake for a refused session, force-closing
// if the peer does not answer within the handshake window.
func (h *WSHandler) reject(conn *websocket.Conn, status websocket.StatusCode, reason string) {
	t := time.AfterFunc(h.handshakeTimeout, func() {
		_ = conn.CloseNow()
	})
	defer t.Stop()
	_ = conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *core.Conn) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		protoErr, err := h.handleInbound(ctx, sess, inbound)
		if err != nil {
			return err
		}
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
		}
	}
}

func (h *WSHandler) handleInbound(ctx context.Context, sess *core.Conn, inbound proto.Inbound) (*proto.Error, error) {
	if inbound.Type != proto.InboundTypeMsg {
		return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown message type"}, nil
	}

	msg, protoErr, err := inboundToEnvelope(sess, inbound)
	if err != nil || protoErr != nil {
		return protoErr, err
	}

	if pubErr := h.broker.Publish(ctx, msg); pubErr != nil {
		if errors.Is(pubErr, broker.ErrUnavailable) {
			h.log.Warn().Str("conn_id", sess.ID).Msg("broker unavailable for ws message")
			return &proto.Error{Code: core.ErrCodeUnavailable, Msg: "broker unavailable"}, nil
		}
		return nil, pubErr
	}
	return nil, nil
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *core.Conn) error {
	for {
		select {
		case msg := <-sess.Outbox():
			if err := wsjson.Write(ctx, conn, outboundFromMessage(msg)); err != nil {
				h.log.Error().Err(err).Str("conn_id", sess.ID).Msg("write ws message")
				return err
			}
		case <-sess.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
