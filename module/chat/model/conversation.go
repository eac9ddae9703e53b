package model

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"FitProject/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Message is one entry in a conversation's embedded log. Immutable once
// stored; the id and timestamp are assigned on the append path.
type Message struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	SenderID  string             `bson:"sender_id" json:"senderId"`
	Body      string             `bson:"body" json:"body"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Conversation holds exactly two distinct participants and their
// append-only message log. PairKey is the sorted participant pair, and
// a unique index on it guarantees one conversation per pair no matter
// the argument order.
type Conversation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Participants   []string           `bson:"participants" json:"participants"`
	PairKey        string             `bson:"pair_key" json:"-"`
	Messages       []Message          `bson:"messages" json:"messages"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	LastActivityAt time.Time          `bson:"last_activity_at" json:"lastActivityAt"`
}

const conversationCollection = "conversations"

// PairKey builds the canonical key for an unordered participant pair.
func PairKey(a, b string) string {
	p := []string{a, b}
	sort.Strings(p)
	return strings.Join(p, ":")
}

type ConversationStore struct {
	db *mongo.Database

	tsMu   sync.Mutex
	lastTS map[string]time.Time // conversation id -> last assigned timestamp
}

func NewConversationStore(db *mongo.Database) *ConversationStore {
	return &ConversationStore{db: db, lastTS: make(map[string]time.Time)}
}

// nextTimestamp assigns the server timestamp for an append, clamped so
// timestamps within a conversation never decrease even if the wall
// clock steps backwards between appends.
func (s *ConversationStore) nextTimestamp(convID string) time.Time {
	s.tsMu.Lock()
	defer s.tsMu.Unlock()
	ts := time.Now()
	if last, ok := s.lastTS[convID]; ok && ts.Before(last) {
		ts = last
	}
	s.lastTS[convID] = ts
	return ts
}

func (s *ConversationStore) coll() *mongo.Collection {
	return s.db.Collection(conversationCollection)
}

// EnsureIndexes backs the pair uniqueness invariant and the list query.
func (s *ConversationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "last_activity_at", Value: -1}}},
	})
	return errs.WrapMsg(err, "ensure conversation indexes")
}

// CreateOrFind returns the conversation for the unordered pair,
// creating it on first request. created reports which happened so the
// REST layer can answer 201 vs 200. An insert race on the unique index
// falls back to the winner's document.
func (s *ConversationStore) CreateOrFind(ctx context.Context, userA, userB string) (*Conversation, bool, error) {
	if userA == "" || userB == "" {
		return nil, false, errs.ErrArgs.WrapMsg("participant id empty")
	}
	if userA == userB {
		return nil, false, errs.ErrArgs.WrapMsg("cannot chat with yourself")
	}
	key := PairKey(userA, userB)

	var existing Conversation
	err := s.coll().FindOne(ctx, bson.M{"pair_key": key}).Decode(&existing)
	if err == nil {
		return &existing, false, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, errs.ErrStorage.WrapMsg("find conversation", "pair_key", key, "err", err)
	}

	parts := []string{userA, userB}
	sort.Strings(parts)
	now := time.Now()
	conv := Conversation{
		ID:             primitive.NewObjectID(),
		Participants:   parts,
		PairKey:        key,
		Messages:       []Message{},
		CreatedAt:      now,
		LastActivityAt: now,
	}
	_, err = s.coll().InsertOne(ctx, conv)
	if err == nil {
		return &conv, true, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		// lost the race; the pair's conversation already exists
		if ferr := s.coll().FindOne(ctx, bson.M{"pair_key": key}).Decode(&existing); ferr == nil {
			return &existing, false, nil
		}
	}
	return nil, false, errs.ErrStorage.WrapMsg("insert conversation", "pair_key", key, "err", err)
}

// Participants returns the participant pair without loading the log.
func (s *ConversationStore) Participants(ctx context.Context, convID string) ([]string, error) {
	oid, err := parseID(convID)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Participants []string `bson:"participants"`
	}
	opts := options.FindOne().SetProjection(bson.M{"participants": 1})
	err = s.coll().FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WrapMsg("conversation", "id", convID)
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("load participants", "id", convID, "err", err)
	}
	return doc.Participants, nil
}

// AppendMessage atomically appends to the log and returns the stored
// message with its durable id and server timestamp. The filter requires
// the sender to be a participant, so an unauthorized append matches
// nothing and writes nothing.
func (s *ConversationStore) AppendMessage(ctx context.Context, convID, senderID, body string) (*Message, error) {
	oid, err := parseID(convID)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return nil, errs.ErrArgs.WrapMsg("empty body")
	}

	msg := Message{
		ID:        primitive.NewObjectID(),
		SenderID:  senderID,
		Body:      body,
		Timestamp: s.nextTimestamp(convID),
	}
	res, err := s.coll().UpdateOne(ctx,
		bson.M{"_id": oid, "participants": senderID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"last_activity_at": msg.Timestamp},
		},
	)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("append message", "conversation", convID, "err", err)
	}
	if res.MatchedCount == 0 {
		// distinguish missing conversation from a non-participant sender
		if _, perr := s.Participants(ctx, convID); perr != nil {
			return nil, perr
		}
		return nil, errs.ErrNoPermission.WrapMsg("sender is not a participant", "conversation", convID, "sender", senderID)
	}
	return &msg, nil
}

// History returns the most recent limit messages, oldest first, for a
// caller that must be a participant.
func (s *ConversationStore) History(ctx context.Context, convID, userID string, limit int) ([]Message, error) {
	oid, err := parseID(convID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	var doc struct {
		Messages []Message `bson:"messages"`
	}
	opts := options.FindOne().SetProjection(bson.M{"messages": bson.M{"$slice": -limit}})
	err = s.coll().FindOne(ctx, bson.M{"_id": oid, "participants": userID}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WrapMsg("conversation or not a participant", "id", convID)
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("load history", "id", convID, "err", err)
	}
	if doc.Messages == nil {
		doc.Messages = []Message{}
	}
	return doc.Messages, nil
}

// GetFor loads a full conversation for one of its participants.
func (s *ConversationStore) GetFor(ctx context.Context, convID, userID string) (*Conversation, error) {
	oid, err := parseID(convID)
	if err != nil {
		return nil, err
	}
	var conv Conversation
	err = s.coll().FindOne(ctx, bson.M{"_id": oid, "participants": userID}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WrapMsg("conversation or not a participant", "id", convID)
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("load conversation", "id", convID, "err", err)
	}
	return &conv, nil
}

// ListByUser returns the user's conversations, most recent activity first.
func (s *ConversationStore) ListByUser(ctx context.Context, userID string) ([]Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_activity_at", Value: -1}})
	cur, err := s.coll().Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("list conversations", "user", userID, "err", err)
	}
	defer cur.Close(ctx)

	out := []Conversation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrStorage.WrapMsg("decode conversations", "user", userID, "err", err)
	}
	return out, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errs.ErrArgs.WrapMsg("invalid conversation id", "id", id)
	}
	return oid, nil
}
