package chat

import (
	"encoding/json"
	"time"

	"FitProject/tools/decode"
	"FitProject/tools/errs"
)

// Wire protocol: JSON frames over the websocket, one frame per message.
// Client events name the conversation they act on; server events carry
// the canonical stored message. Identity is never read from a frame:
// it comes from the handshake-verified session.

const (
	// client -> server
	FrameJoinRoom    = "joinRoom"
	FrameLeaveRoom   = "leaveRoom"
	FrameSendMessage = "sendMessage"
	FramePing        = "ping"

	// server -> client
	FrameRoomJoined           = "roomJoined"
	FrameNewMessage           = "newMessage"
	FrameSendError            = "sendError"
	FramePong                 = "pong"
	FrameConversationActivity = "conversationActivity"
)

type Frame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errs.ErrArgs.WrapMsg("unmarshal frame", "err", err)
	}
	if f.Type == "" {
		return nil, errs.ErrArgs.WrapMsg("frame type empty")
	}
	return &f, nil
}

type RoomPayload struct {
	ConversationID string `json:"conversationId"`
}

type SendPayload struct {
	ConversationID string `json:"conversationId"`
	Body           string `json:"body"`
}

func (f *Frame) RoomPayload() (*RoomPayload, error) {
	p, err := decode.DecodeMap[RoomPayload](f.Payload)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad payload", "type", f.Type, "err", err)
	}
	return p, nil
}

func (f *Frame) SendPayload() (*SendPayload, error) {
	p, err := decode.DecodeMap[SendPayload](f.Payload)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("bad payload", "type", f.Type, "err", err)
	}
	return p, nil
}

// ---- server frame builders ----

type wireMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Body           string `json:"body"`
	Timestamp      int64  `json:"timestamp"` // unix millis
}

func toWire(m *StoredMessage) wireMessage {
	return wireMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		Timestamp:      m.Timestamp.UnixMilli(),
	}
}

func marshalFrame(typ string, payload any) []byte {
	b, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Payload any    `json:"payload,omitempty"`
	}{Type: typ, Payload: payload})
	return b
}

func BuildNewMessage(m *StoredMessage) []byte {
	return marshalFrame(FrameNewMessage, struct {
		ConversationID string      `json:"conversationId"`
		Message        wireMessage `json:"message"`
	}{m.ConversationID, toWire(m)})
}

func BuildConversationActivity(m *StoredMessage) []byte {
	return marshalFrame(FrameConversationActivity, struct {
		ConversationID string      `json:"conversationId"`
		Message        wireMessage `json:"message"`
	}{m.ConversationID, toWire(m)})
}

func BuildRoomJoined(conversationID string) []byte {
	return marshalFrame(FrameRoomJoined, struct {
		ConversationID string `json:"conversationId"`
		Ts             int64  `json:"ts"`
	}{conversationID, time.Now().UnixMilli()})
}

// BuildSendError goes only to the originating connection; the reason
// tells the client whether to retry or roll back its optimistic echo.
func BuildSendError(conversationID string, err error) []byte {
	code := errs.ServerInternalError
	reason := "internal error"
	if ce, ok := errs.AsCode(err); ok {
		code = ce.Code
		reason = ce.Msg
	}
	return marshalFrame(FrameSendError, struct {
		ConversationID string `json:"conversationId"`
		Code           int    `json:"code"`
		Reason         string `json:"reason"`
	}{conversationID, code, reason})
}

func BuildPong() []byte {
	return marshalFrame(FramePong, struct {
		Ts int64 `json:"ts"`
	}{time.Now().UnixMilli()})
}
