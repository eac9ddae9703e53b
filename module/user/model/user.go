package model

import (
	"context"
	"regexp"
	"time"

	"FitProject/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User is the platform profile document. The chat core only reads it:
// existence checks when opening a conversation and the search picker.
// Credential fields live with the (out of scope) auth service.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	ProfilePicture string             `bson:"profile_picture,omitempty" json:"profilePicture,omitempty"`
	Role           string             `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"-"`
}

const userCollection = "users"

type UserStore struct {
	db *mongo.Database
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) coll() *mongo.Collection {
	return s.db.Collection(userCollection)
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("invalid user id", "id", id)
	}
	var u User
	err = s.coll().FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrRecordNotFound.WrapMsg("user", "id", id)
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("find user", "id", id, "err", err)
	}
	return &u, nil
}

// SearchByUsername does a prefix match, excluding the caller, for the
// start-a-chat picker.
func (s *UserStore) SearchByUsername(ctx context.Context, prefix, excludeID string, limit int) ([]User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	filter := bson.M{
		"username": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix), "$options": "i"},
	}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "username", Value: 1}})
	cur, err := s.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("search users", "prefix", prefix, "err", err)
	}
	defer cur.Close(ctx)

	out := []User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.ErrStorage.WrapMsg("decode users", "err", err)
	}
	return out, nil
}
