package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSet is the Store to use when several engine instances watch the same
// mailbox: SADD is an atomic check-and-insert, so only one instance wins a
// given message id. The key expires instead of FIFO-evicting.
type RedisSet struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisSet(addr, key string, ttl time.Duration) *RedisSet {
	if key == "" {
		key = "jobclaim:seen"
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisSet{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
		ttl:    ttl,
	}
}

func (r *RedisSet) Add(ctx context.Context, id string) (bool, error) {
	n, err := r.client.SAdd(ctx, r.key, id).Result()
	if err != nil {
		return false, err
	}
	// Refresh the expiry on every insert; the set dies with the traffic.
	_ = r.client.Expire(ctx, r.key, r.ttl).Err()
	return n > 0, nil
}

func (r *RedisSet) Close() error {
	return r.client.Close()
}
