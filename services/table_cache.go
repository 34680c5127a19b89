package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-till/utils"
)

// RedisTableCache keeps table views for a few seconds. Order mutations
// delete the key, so a stale view only survives a failed delete.
type RedisTableCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisTableCache(client *redis.Client, prefix string, ttl time.Duration) *RedisTableCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisTableCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisTableCache) key(tenantID, tableID uint) string {
	return fmt.Sprintf("%s:tenant:%d:table:%d", c.prefix, tenantID, tableID)
}

func (c *RedisTableCache) Get(ctx context.Context, tenantID, tableID uint) (*TableView, bool) {
	raw, err := c.client.Get(ctx, c.key(tenantID, tableID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.ErrorLogger.WithError(err).Warn("table cache get failed")
		}
		return nil, false
	}
	var view TableView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false
	}
	return &view, true
}

func (c *RedisTableCache) Set(ctx context.Context, tenantID, tableID uint, view *TableView) {
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(tenantID, tableID), raw, c.ttl).Err(); err != nil {
		utils.ErrorLogger.WithError(err).Warn("table cache set failed")
	}
}

func (c *RedisTableCache) Invalidate(ctx context.Context, tenantID, tableID uint) {
	if err := c.client.Del(ctx, c.key(tenantID, tableID)).Err(); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"table_id":  tableID,
		}).WithError(err).Error("table cache invalidate failed")
	}
}
