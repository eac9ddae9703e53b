package global

import (
	"context"
	"os"
	"strings"

	"FitProject/data/database/mgo/mongoutil"
	"FitProject/logger"
	mgoSrv "FitProject/service/mgo"
	redis "FitProject/service/storage/redis"
	ids "FitProject/tools/ids"
)

// Env-driven wiring. Each ConfigX builds one piece of shared
// infrastructure; the gateway itself is constructed explicitly in main
// so test instances never share live state.

func ConfigAll(ctx context.Context) error {
	ConfigIds()
	if err := ConfigRedis(); err != nil {
		// presence mirror is best-effort; run without it
		logger.Warnf("[config] redis unavailable, presence mirror disabled: %v", err)
	}
	return ConfigMgo(ctx)
}

func ConfigIds() {
	ids.SetNodeID(100)
}

func GetJwtSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	// dev fallback; production sets JWT_SECRET
	return []byte("mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=")
}

func ConfigRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}
	return redis.InitRedis(redis.Config{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}

func ConfigMgo(ctx context.Context) error {
	cfg := &mongoutil.Config{
		Uri:         envOr("MONGO_URI", "mongodb://localhost:27017"),
		Database:    envOr("MONGO_DB", "fitconnect"),
		Username:    os.Getenv("MONGO_USER"),
		Password:    os.Getenv("MONGO_PASSWORD"),
		MaxPoolSize: 20,
		MaxRetry:    3,
	}
	return mgoSrv.Init(ctx, cfg)
}

func GatewayID() string {
	return envOr("GATEWAY_ID", "chat_gw-1")
}

func HTTPAddr() string {
	return envOr("HTTP_ADDR", ":8080")
}

// KafkaBrokers returns nil when the event stream is disabled.
func KafkaBrokers() []string {
	v := os.Getenv("KAFKA_BROKERS")
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
