package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis backs the Store with a redis instance, for deployments where the
// session cache lives in a companion daemon rather than on-device. Slots are
// namespaced per install so several clients can share one server.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, installID string) *Redis {
	return &Redis{rdb: rdb, prefix: "aurora:" + installID + ":"}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	// no TTL: expiry policy belongs to the session manager
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

var _ Store = (*Redis)(nil)
