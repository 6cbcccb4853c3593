package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"storefront-api/models"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"
)

// errMiss signals an absent key, whatever the backing store.
var errMiss = errors.New("cache miss")

// kv is the minimal key-value surface the cache needs. Redis implements it
// in production; tests swap in a map.
type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisKV struct {
	client *redis.Client
}

func (r redisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", errMiss
	}
	return value, err
}

func (r redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r redisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// OrderListCache is a cache-aside layer over the per-user order listing.
// Concurrent misses for the same user collapse into one store read via
// singleflight. A nil *OrderListCache is valid and loads straight from the
// store, so Redis stays optional at runtime.
type OrderListCache struct {
	store kv
	ttl   time.Duration
	group singleflight.Group
}

func New(client *redis.Client, ttl time.Duration) *OrderListCache {
	if client == nil {
		return nil
	}
	return &OrderListCache{store: redisKV{client: client}, ttl: ttl}
}

func cacheKey(userID string) string {
	return "orders:user:" + userID
}

// Get returns the cached listing for userID, loading and filling on a
// miss. Cache failures degrade to the loader; they are never surfaced.
func (c *OrderListCache) Get(ctx context.Context, userID string, load func(context.Context) ([]models.OrderWithItems, error)) ([]models.OrderWithItems, error) {
	if c == nil {
		return load(ctx)
	}

	key := cacheKey(userID)
	if raw, err := c.store.Get(ctx, key); err == nil {
		var orders []models.OrderWithItems
		if err := json.Unmarshal([]byte(raw), &orders); err == nil {
			return orders, nil
		}
		log.Printf("cache: corrupt entry for %s, reloading", key)
	} else if err != errMiss {
		log.Printf("cache: read failed for %s: %v", key, err)
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		orders, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(orders); err == nil {
			if err := c.store.Set(ctx, key, string(payload), c.ttl); err != nil {
				log.Printf("cache: write failed for %s: %v", key, err)
			}
		}
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]models.OrderWithItems), nil
}

// Invalidate drops the cached listing after an order write.
func (c *OrderListCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	key := cacheKey(userID)
	if err := c.store.Del(ctx, key); err != nil {
		log.Printf("cache: invalidate failed for %s: %v", key, err)
	}
}
