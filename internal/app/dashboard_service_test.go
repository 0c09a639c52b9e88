package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claira-social/internal/model"
	"claira-social/internal/repository"
)

type memoryDashboardCache struct {
	mu      sync.Mutex
	entries map[uint]*model.Dashboard
	dirty   map[uint]bool
	sets    int
}

func newMemoryDashboardCache() *memoryDashboardCache {
	return &memoryDashboardCache{entries: map[uint]*model.Dashboard{}, dirty: map[uint]bool{}}
}

func (m *memoryDashboardCache) Get(_ context.Context, userID uint) (*model.Dashboard, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.entries[userID]
	return d, ok, nil
}

func (m *memoryDashboardCache) Set(_ context.Context, userID uint, d *model.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[userID] = d
	return nil
}

func (m *memoryDashboardCache) MarkDirty(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty[userID] = true
	delete(m.entries, userID)
	return nil
}

func (m *memoryDashboardCache) IsDirty(_ context.Context, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty[userID], nil
}

func TestDashboardService_ComputesStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	accountRepo := repository.NewSocialAccountRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	cache := newMemoryDashboardCache()
	svc := NewDashboardService(postRepo, analyticsRepo, accountRepo, cache, zerolog.Nop())

	at := time.Now().Add(time.Hour)
	for i, p := range []*model.Post{
		{UserID: 1, Content: "a", Platforms: []model.Platform{model.PlatformTwitter}, Status: model.PostDraft},
		{UserID: 1, Content: "b", Platforms: []model.Platform{model.PlatformTwitter, model.PlatformInstagram}, Status: model.PostScheduled, ScheduledAt: &at},
		{UserID: 1, Content: "c", Platforms: []model.Platform{model.PlatformLinkedIn}, Status: model.PostPublished},
		{UserID: 2, Content: "other", Platforms: []model.Platform{model.PlatformTwitter}, Status: model.PostPublished},
	} {
		p.CreatedAt = time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC)
		require.NoError(t, postRepo.Create(ctx, p))
	}
	require.NoError(t, accountRepo.Create(ctx, &model.SocialAccount{UserID: 1, Platform: model.PlatformTwitter, PlatformUserID: "1", PlatformUsername: "x", AccessToken: "t", IsActive: true}))
	require.NoError(t, analyticsRepo.Record(ctx, &model.AnalyticsEvent{UserID: 1, Metric: "likes", Value: 9}))

	d, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{
		TotalPosts:        3,
		ScheduledPosts:    1,
		PublishedPosts:    1,
		TotalEngagement:   9,
		ConnectedAccounts: 1,
	}, d.Stats)
	require.Len(t, d.RecentPosts, 3)
	assert.Equal(t, "c", d.RecentPosts[0].Content)
	require.NotEmpty(t, d.PlatformStats)
	assert.Equal(t, model.PlatformStat{Platform: model.PlatformTwitter, Count: 2}, d.PlatformStats[0])
	assert.Equal(t, 1, cache.sets)

	// served from cache
	again, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, d, again)

	// a dirty marker forces recomputation and skips refilling
	require.NoError(t, cache.MarkDirty(ctx, 1))
	_, err = svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
}
