package rdx

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conn is the shared Redis client; nil until Connect succeeds. Callers are
// expected to treat Redis as optional (cache misses, dropped events).
var Conn *redis.Client

var ErrNotConnected = errors.New("redis not connected")

func Connect(ctx context.Context) error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}
	Conn = client
	return nil
}

func RdxGet(ctx context.Context, key string) (string, error) {
	if Conn == nil {
		return "", ErrNotConnected
	}
	return Conn.Get(ctx, key).Result()
}

func RdxSet(ctx context.Context, key, value string, ttl time.Duration) error {
	if Conn == nil {
		return ErrNotConnected
	}
	return Conn.Set(ctx, key, value, ttl).Err()
}

func RdxDel(ctx context.Context, key string) error {
	if Conn == nil {
		return ErrNotConnected
	}
	return Conn.Del(ctx, key).Err()
}

func RdxHset(ctx context.Context, hash, field, value string) error {
	if Conn == nil {
		return ErrNotConnected
	}
	return Conn.HSet(ctx, hash, field, value).Err()
}

func RdxHdel(ctx context.Context, hash, field string) error {
	if Conn == nil {
		return ErrNotConnected
	}
	return Conn.HDel(ctx, hash, field).Err()
}
