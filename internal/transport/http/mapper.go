package http

import (
	"encoding/json"
	"time"

	"github.com/pairline/pairline-server/internal/broker"
	"github.com/pairline/pairline-server/internal/core"
	"github.com/pairline/pairline-server/internal/proto"
)

func inboundToEnvelope(sess *core.Conn, inbound proto.Inbound) (broker.Envelope, *proto.Error, error) {
	var msg proto.MsgData
	if err := json.Unmarshal(inbound.Data, &msg); err != nil {
		return broker.Envelope{}, nil, err
	}
	if msg.Text == "" {
		return broker.Envelope{}, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "text is required"}, nil
	}

	return broker.Envelope{
		RoomID:         sess.User.RoomID,
		Content:        msg.Text,
		OriginUserID:   sess.User.ID,
		OriginUsername: sess.User.Username,
		OriginConnID:   sess.ID,
		SentAt:         time.Now(),
	}, nil, nil
}

func outboundFromMessage(msg core.Message) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: proto.EventMessageName,
		Data: proto.EventMessage{
			Room: msg.RoomID,
			User: msg.FromName,
			Text: msg.Content,
			TS:   msg.SentAt.Unix(),
		},
	}
}
