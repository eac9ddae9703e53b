package chat

import (
	"encoding/json"
	"testing"
	"time"

	"FitProject/tools/errs"

	"github.com/pkg/errors"
)

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"joinRoom","payload":{"conversationId":"conv-a"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Type != FrameJoinRoom {
		t.Fatalf("type = %q", f.Type)
	}
	p, err := f.RoomPayload()
	if err != nil {
		t.Fatalf("room payload: %v", err)
	}
	if p.ConversationID != "conv-a" {
		t.Fatalf("conversationId = %q", p.ConversationID)
	}

	if _, err := ParseFrame([]byte(`not json`)); err == nil {
		t.Fatal("garbage accepted")
	}
	if _, err := ParseFrame([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("missing type accepted")
	}
}

func TestSendPayload(t *testing.T) {
	f, err := ParseFrame([]byte(`{"type":"sendMessage","payload":{"conversationId":"conv-a","body":"hi"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, err := f.SendPayload()
	if err != nil {
		t.Fatalf("send payload: %v", err)
	}
	if p.ConversationID != "conv-a" || p.Body != "hi" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestBuildNewMessage(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := BuildNewMessage(&StoredMessage{
		ID:             "m1",
		ConversationID: "conv-a",
		SenderID:       "alice",
		Body:           "hi",
		Timestamp:      ts,
	})

	var got struct {
		Type    string `json:"type"`
		Payload struct {
			ConversationID string `json:"conversationId"`
			Message        struct {
				ID        string `json:"id"`
				SenderID  string `json:"senderId"`
				Body      string `json:"body"`
				Timestamp int64  `json:"timestamp"`
			} `json:"message"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != FrameNewMessage {
		t.Fatalf("type = %q", got.Type)
	}
	if got.Payload.ConversationID != "conv-a" || got.Payload.Message.ID != "m1" ||
		got.Payload.Message.SenderID != "alice" || got.Payload.Message.Body != "hi" {
		t.Fatalf("payload = %+v", got.Payload)
	}
	if got.Payload.Message.Timestamp != ts.UnixMilli() {
		t.Fatalf("timestamp = %d, want %d", got.Payload.Message.Timestamp, ts.UnixMilli())
	}
}

func TestBuildSendError(t *testing.T) {
	raw := BuildSendError("conv-a", errs.ErrNoPermission.WrapMsg("not a participant"))

	var got struct {
		Type    string `json:"type"`
		Payload struct {
			ConversationID string `json:"conversationId"`
			Code           int    `json:"code"`
			Reason         string `json:"reason"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != FrameSendError {
		t.Fatalf("type = %q", got.Type)
	}
	if got.Payload.Code != errs.NoPermissionError {
		t.Fatalf("code = %d, want %d", got.Payload.Code, errs.NoPermissionError)
	}

	// unknown errors collapse to the internal code, no detail leaks
	raw = BuildSendError("conv-a", errors.New("mongo exploded"))
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Payload.Code != errs.ServerInternalError {
		t.Fatalf("plain error code = %d, want %d", got.Payload.Code, errs.ServerInternalError)
	}
}
