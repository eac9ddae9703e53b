package storage

import (
	"context"
	"time"

	rds "FitProject/service/storage/redis"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Presence mirror. Authoritative presence lives in the gateway's
// ConnManager; this key only tells other processes (and the
// notification worker) which gateway a user is attached to.
//
// key: fc:presence:<user>  value: gateway_id  TTL bounds staleness.

func presenceKey(user string) string { return "fc:presence:" + user }

// PresenceOnline marks the user online on this gateway and renews the TTL.
func PresenceOnline(ctx context.Context, user, gatewayID string, ttl time.Duration) error {
	rdb, ok := rds.TryGetRedis()
	if !ok {
		return nil // mirror disabled
	}
	return rdb.Set(ctx, presenceKey(user), gatewayID, ttl).Err()
}

// PresenceOffline deletes the key; called when the user's last
// connection on this gateway goes away.
func PresenceOffline(ctx context.Context, user string) error {
	rdb, ok := rds.TryGetRedis()
	if !ok {
		return nil
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup reports whether the user is online anywhere and on
// which gateway.
func PresenceLookup(ctx context.Context, user string) (gatewayID string, online bool, err error) {
	rdb, ok := rds.TryGetRedis()
	if !ok {
		return "", false, nil
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
