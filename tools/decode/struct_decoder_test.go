package decode

import "testing"

type samplePayload struct {
	ConversationID string `json:"conversationId"`
	Body           string `json:"body"`
	Limit          int    `json:"limit"`
}

func TestDecodeMap(t *testing.T) {
	p, err := DecodeMap[samplePayload](map[string]any{
		"conversationId": "conv-a",
		"body":           "hi",
		"limit":          float64(25), // JSON numbers arrive as float64
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ConversationID != "conv-a" || p.Body != "hi" || p.Limit != 25 {
		t.Fatalf("decoded = %+v", p)
	}
}

func TestDecodeMapIgnoresUnknownKeys(t *testing.T) {
	p, err := DecodeMap[samplePayload](map[string]any{
		"conversationId": "conv-a",
		"clientNonce":    "abc123",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ConversationID != "conv-a" {
		t.Fatalf("decoded = %+v", p)
	}
}

func TestDecodeMapNil(t *testing.T) {
	if _, err := DecodeMap[samplePayload](nil); err == nil {
		t.Fatal("nil payload accepted")
	}
}
