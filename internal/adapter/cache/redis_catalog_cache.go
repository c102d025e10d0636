package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	domain "github.com/janarabaya/Nursery-Management-System-sub000/internal/entity"
	"github.com/janarabaya/Nursery-Management-System-sub000/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisCatalogCache fronts the catalog store for the gift picker. Misses
// and Redis failures fall through to the backing store; writes are
// best-effort.
type RedisCatalogCache struct {
	rdb  *redis.Client
	next usecase.Catalog
	ttl  time.Duration
}

func NewRedisCatalogCache(rdb *redis.Client, next usecase.Catalog, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{rdb: rdb, next: next, ttl: ttl}
}

func (c *RedisCatalogCache) Get(ctx context.Context, plantID int64) (*domain.Plant, error) {
	key := "catalog:plant:" + strconv.FormatInt(plantID, 10)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var p domain.Plant
		if json.Unmarshal(raw, &p) == nil {
			return &p, nil
		}
	}

	p, err := c.next.Get(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(p); err == nil {
		_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}
	return p, nil
}

func (c *RedisCatalogCache) List(ctx context.Context) ([]*domain.Plant, error) {
	const key = "catalog:plants"
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var plants []*domain.Plant
		if json.Unmarshal(raw, &plants) == nil {
			return plants, nil
		}
	}

	plants, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(plants); err == nil {
		_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}
	return plants, nil
}

var _ usecase.Catalog = (*RedisCatalogCache)(nil)
