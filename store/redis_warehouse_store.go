package store

import (
	"time"

	"github.com/malinawb/malina-bot/types"
)

// RedisWarehouseCache holds the global marketplace warehouse list. The
// entry never expires on its own: stale data keeps being served and
// NeedsRefresh tells callers when to fetch a fresh list (cache-aside,
// at most once per maxAge).
type RedisWarehouseCache struct {
	client *RedisClient
	maxAge time.Duration
	now    func() time.Time
}

func NewRedisWarehouseCache(redisClient *RedisClient, maxAgeHours int) *RedisWarehouseCache {
	maxAge := time.Duration(maxAgeHours) * time.Hour
	if maxAgeHours <= 0 {
		maxAge = 12 * time.Hour
	}
	return &RedisWarehouseCache{client: redisClient, maxAge: maxAge, now: time.Now}
}

type warehouseCacheEntry struct {
	Warehouses []types.Warehouse        `json:"warehouses"`
	Info       types.WarehouseCacheInfo `json:"info"`
}

func (c *RedisWarehouseCache) key() string {
	return c.client.generateKey("warehouses")
}

func (c *RedisWarehouseCache) CacheWarehouses(warehouses []types.Warehouse, updatedBy int64) error {
	entry := warehouseCacheEntry{
		Warehouses: warehouses,
		Info: types.WarehouseCacheInfo{
			UpdatedAt: c.now().UTC(),
			UpdatedBy: updatedBy,
		},
	}
	return c.client.Set(c.key(), entry, 0)
}

func (c *RedisWarehouseCache) GetWarehouses() ([]types.Warehouse, error) {
	var entry warehouseCacheEntry
	if err := c.client.Get(c.key(), &entry); err != nil {
		return nil, err
	}
	return entry.Warehouses, nil
}

func (c *RedisWarehouseCache) NeedsRefresh() (bool, error) {
	var entry warehouseCacheEntry
	if err := c.client.Get(c.key(), &entry); err != nil {
		return true, nil
	}
	return c.now().Sub(entry.Info.UpdatedAt) > c.maxAge, nil
}

func (c *RedisWarehouseCache) UpdateInfo() (*types.WarehouseCacheInfo, error) {
	var entry warehouseCacheEntry
	if err := c.client.Get(c.key(), &entry); err != nil {
		return nil, types.ErrNotFound
	}
	info := entry.Info
	return &info, nil
}
