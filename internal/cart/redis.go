package cart

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cineteca/cineteca-api/internal/model"
)

// keyspace shared by every instance; carts written by one server are
// readable by the rest.
const redisNamespace = "cineteca_cart"

// RedisPersister stores each cart as one JSON blob per user.
type RedisPersister struct {
	rdb *redis.Client
	ttl int // seconds, 0 keeps carts forever
}

func NewRedisPersister(rdb *redis.Client, ttlSeconds int) *RedisPersister {
	return &RedisPersister{rdb: rdb, ttl: ttlSeconds}
}

func cartKey(userID uint64) string {
	return redisNamespace + ":" + strconv.FormatUint(userID, 10)
}

func (p *RedisPersister) Save(ctx context.Context, userID uint64, items []model.CartItem) error {
	if len(items) == 0 {
		return p.Drop(ctx, userID)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, cartKey(userID), raw, time.Duration(p.ttl)*time.Second).Err()
}

func (p *RedisPersister) Load(ctx context.Context, userID uint64) ([]model.CartItem, error) {
	raw, err := p.rdb.Get(ctx, cartKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []model.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// Unreadable payload counts as an empty cart rather than a hard
		// failure; the user can always rebuild a cart.
		return nil, nil
	}
	return items, nil
}

func (p *RedisPersister) Drop(ctx context.Context, userID uint64) error {
	return p.rdb.Del(ctx, cartKey(userID)).Err()
}
