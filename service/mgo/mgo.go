package mgo

import (
	"context"
	"sync"
	"sync/atomic"

	mgo "FitProject/data/database/mgo/mongoutil"
	"FitProject/tools/errs"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoManager holds the shared client. Connecting is done once at
// startup; callers that can tolerate an unready store use TryGetDB.
type MongoManager struct {
	mu      sync.RWMutex
	client  *mgo.Client
	lastErr atomic.Value // error
}

var globalMgr MongoManager

// Init connects (with the retry policy from mongoutil) and installs the
// shared client. Blocks until connected or the retries are exhausted.
func Init(ctx context.Context, cfg *mgo.Config) error {
	cli, err := mgo.NewMongoDB(ctx, cfg)
	if err != nil {
		globalMgr.lastErr.Store(err)
		return err
	}
	globalMgr.mu.Lock()
	globalMgr.client = cli
	globalMgr.mu.Unlock()
	return nil
}

// Err reports the most recent connection error.
func Err() error {
	if v := globalMgr.lastErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

func GetDB() *mongo.Database {
	globalMgr.mu.RLock()
	defer globalMgr.mu.RUnlock()
	if globalMgr.client == nil {
		panic("mongo not ready: call Init first or use TryGetDB")
	}
	return globalMgr.client.GetDB()
}

func TryGetDB() (*mongo.Database, bool) {
	globalMgr.mu.RLock()
	defer globalMgr.mu.RUnlock()
	if globalMgr.client == nil {
		return nil, false
	}
	return globalMgr.client.GetDB(), true
}

// Close disconnects the shared client.
func Close(ctx context.Context) error {
	globalMgr.mu.Lock()
	defer globalMgr.mu.Unlock()
	if globalMgr.client == nil {
		return errs.New("mongo not initialized")
	}
	err := globalMgr.client.GetDB().Client().Disconnect(ctx)
	globalMgr.client = nil
	return err
}
