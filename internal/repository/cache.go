package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"storefront/internal/entity"
	"time"
)

// ProductCache keeps serialized products in Redis under product:<id>.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

// Get returns (nil, nil) on a cache miss.
func (c *ProductCache) Get(ctx context.Context, id int) (*entity.Product, error) {
	val, err := c.rdb.Get(ctx, productKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product entity.Product
	if err := json.Unmarshal([]byte(val), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *ProductCache) Set(ctx context.Context, product *entity.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, c.ttl).Err()
}

func (c *ProductCache) Delete(ctx context.Context, id int) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

// OrderIdempotencyPrefix namespaces Idempotency-Key values for order placement.
const OrderIdempotencyPrefix = "order-idempotency:"

// IdempotencyKeys records request keys that were already accepted.
type IdempotencyKeys struct {
	rdb    *redis.Client
	prefix string
}

func NewIdempotencyKeys(rdb *redis.Client, prefix string) *IdempotencyKeys {
	return &IdempotencyKeys{rdb: rdb, prefix: prefix}
}

// Claim stores the key if it is new. It returns false when the key was already claimed.
func (k *IdempotencyKeys) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return k.rdb.SetNX(ctx, k.redisKey(key), "exists", ttl).Result()
}

func (k *IdempotencyKeys) Release(ctx context.Context, key string) error {
	return k.rdb.Del(ctx, k.redisKey(key)).Err()
}

func (k *IdempotencyKeys) redisKey(key string) string {
	return k.prefix + key
}
