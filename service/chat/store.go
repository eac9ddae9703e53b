package chat

import (
	"context"
	"time"
)

// StoredMessage is the canonical persisted message handed to the
// broadcast path: durable id and server timestamp come from the store,
// never from the client.
type StoredMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	Timestamp      time.Time `json:"timestamp"`
}

// Store is the conversation store surface the gateway needs. The
// append is atomic: it either persists and returns the canonical
// message, or persists nothing and reports why.
type Store interface {
	// Participants returns the two participant ids of a conversation.
	Participants(ctx context.Context, conversationID string) ([]string, error)
	// AppendMessage persists one message; the filter refuses senders
	// that are not participants without writing anything.
	AppendMessage(ctx context.Context, conversationID, senderID, body string) (*StoredMessage, error)
}

// AuthFunc verifies a handshake credential and returns the stable user
// id it is bound to. Called exactly once per connection attempt.
type AuthFunc func(credential string) (userID string, err error)
