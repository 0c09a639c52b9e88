package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claira-social/internal/model"
)

func newTestCache(t *testing.T) (*DashboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDashboardCache(client, time.Minute, 5*time.Second), mr
}

func TestDashboardCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	_, hit, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	want := &model.Dashboard{
		Stats:         model.DashboardStats{TotalPosts: 3, ScheduledPosts: 1},
		PlatformStats: []model.PlatformStat{{Platform: model.PlatformTwitter, Count: 2}},
	}
	require.NoError(t, c.Set(ctx, 1, want))

	got, hit, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, want.Stats, got.Stats)
	assert.Equal(t, want.PlatformStats, got.PlatformStats)
}

func TestDashboardCache_MarkDirtyDropsEntryUntilMarkerExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, 2, &model.Dashboard{}))
	require.NoError(t, c.MarkDirty(ctx, 2))

	dirty, err := c.IsDirty(ctx, 2)
	require.NoError(t, err)
	assert.True(t, dirty)

	_, hit, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, hit)

	mr.FastForward(6 * time.Second)
	dirty, err = c.IsDirty(ctx, 2)
	require.NoError(t, err)
	assert.False(t, dirty)
}
