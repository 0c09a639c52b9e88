package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"claira-social/internal/model"
)

// DashboardCache keeps computed dashboards in redis. A short-lived dirty
// marker is set on every write to a user's posts or accounts; while it exists
// readers bypass the cache and do not refill it.
type DashboardCache struct {
	client         *redisv9.Client
	ttl            time.Duration
	dirtyMarkerTTL time.Duration
}

func NewDashboardCache(client *redisv9.Client, ttl, dirtyMarkerTTL time.Duration) *DashboardCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &DashboardCache{
		client:         client,
		ttl:            ttl,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *DashboardCache) Get(ctx context.Context, userID uint) (*model.Dashboard, bool, error) {
	raw, err := c.client.Get(ctx, c.dashboardKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get dashboard failed: %w", err)
	}

	var dashboard model.Dashboard
	if err := json.Unmarshal([]byte(raw), &dashboard); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached dashboard failed: %w", err)
	}
	return &dashboard, true, nil
}

func (c *DashboardCache) Set(ctx context.Context, userID uint, dashboard *model.Dashboard) error {
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("marshal dashboard cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.dashboardKey(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set dashboard failed: %w", err)
	}
	return nil
}

// MarkDirty drops the cached dashboard and sets the dirty marker.
func (c *DashboardCache) MarkDirty(ctx context.Context, userID uint) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.dirtyKey(userID), "1", c.dirtyMarkerTTL)
	pipe.Del(ctx, c.dashboardKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis mark dashboard dirty failed: %w", err)
	}
	return nil
}

func (c *DashboardCache) IsDirty(ctx context.Context, userID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *DashboardCache) dashboardKey(userID uint) string {
	return fmt.Sprintf("dashboard:stats:%d", userID)
}

func (c *DashboardCache) dirtyKey(userID uint) string {
	return fmt.Sprintf("dashboard:stats:dirty:%d", userID)
}
