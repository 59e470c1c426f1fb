package buffer

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Buffer backed by per-user redis lists. Keys follow the
// "<kind>:<userId>" convention ("messages:42", "notifications:42").
type Redis struct {
	rdb    *redis.Client
	limits Limits
}

// NewRedis constructs a redis-backed buffer on an existing client.
func NewRedis(rdb *redis.Client, limits Limits) *Redis {
	return &Redis{rdb: rdb, limits: limits.withDefaults()}
}

// NewRedisClient dials redis from a URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string, pingTimeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Enqueue pushes the payload to the head of the user's list, trims the list
// to MaxItems and refreshes its TTL.
func (r *Redis) Enqueue(ctx context.Context, kind Kind, userID string, payload []byte) error {
	k := key(kind, userID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, k, payload)
		pipe.LTrim(ctx, k, 0, int64(r.limits.MaxItems)-1)
		pipe.Expire(ctx, k, r.limits.TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", k, err)
	}
	return nil
}

// Drain reads the user's whole list, deletes it and returns the items in
// arrival order.
func (r *Redis) Drain(ctx context.Context, kind Kind, userID string) ([][]byte, error) {
	k := key(kind, userID)

	var rangeCmd *redis.StringSliceCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rangeCmd = pipe.LRange(ctx, k, 0, -1)
		pipe.Del(ctx, k)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("drain %s: %w", k, err)
	}

	items := rangeCmd.Val()
	// LPUSH stores newest at index 0; reverse into arrival order.
	out := make([][]byte, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, []byte(items[i]))
	}
	return out, nil
}
