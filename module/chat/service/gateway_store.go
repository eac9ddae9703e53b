package service

import (
	"context"

	"FitProject/module/chat/model"
	"FitProject/service/chat"
)

// GatewayStore adapts the Mongo conversation store to the gateway's
// Store interface.
type GatewayStore struct {
	convs *model.ConversationStore
}

func NewGatewayStore(convs *model.ConversationStore) *GatewayStore {
	return &GatewayStore{convs: convs}
}

func (g *GatewayStore) Participants(ctx context.Context, conversationID string) ([]string, error) {
	return g.convs.Participants(ctx, conversationID)
}

func (g *GatewayStore) AppendMessage(ctx context.Context, conversationID, senderID, body string) (*chat.StoredMessage, error) {
	m, err := g.convs.AppendMessage(ctx, conversationID, senderID, body)
	if err != nil {
		return nil, err
	}
	return &chat.StoredMessage{
		ID:             m.ID.Hex(),
		ConversationID: conversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		Timestamp:      m.Timestamp,
	}, nil
}
