package app

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"claira-social/internal/model"
)

const recentPostCount = 5

type DashboardPostSource interface {
	ListByUserID(ctx context.Context, userID uint, limit int) ([]model.Post, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
	CountByStatus(ctx context.Context, userID uint, status model.PostStatus) (int64, error)
	PlatformCounts(ctx context.Context, userID uint) (map[model.Platform]int64, error)
}

type EngagementSource interface {
	SumValue(ctx context.Context, userID uint) (int64, error)
}

type ActiveAccountCounter interface {
	CountActive(ctx context.Context, userID uint) (int64, error)
}

type DashboardCache interface {
	Get(ctx context.Context, userID uint) (*model.Dashboard, bool, error)
	Set(ctx context.Context, userID uint, dashboard *model.Dashboard) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

type DashboardService struct {
	posts      DashboardPostSource
	engagement EngagementSource
	accounts   ActiveAccountCounter
	cache      DashboardCache
	log        zerolog.Logger
}

func NewDashboardService(
	posts DashboardPostSource,
	engagement EngagementSource,
	accounts ActiveAccountCounter,
	cache DashboardCache,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		posts:      posts,
		engagement: engagement,
		accounts:   accounts,
		cache:      cache,
		log:        log.With().Str("component", "dashboard").Logger(),
	}
}

func (s *DashboardService) Get(ctx context.Context, userID uint) (*model.Dashboard, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.Get(ctx, userID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	dashboard, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			if err := s.cache.Set(ctx, userID, dashboard); err != nil {
				s.log.Warn().Err(err).Uint("user_id", userID).Msg("cache dashboard failed")
			}
		}
	}
	return dashboard, nil
}

func (s *DashboardService) compute(ctx context.Context, userID uint) (*model.Dashboard, error) {
	var (
		stats     model.DashboardStats
		recent    []model.Post
		platforms map[model.Platform]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalPosts, err = s.posts.CountByUserID(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.ScheduledPosts, err = s.posts.CountByStatus(gctx, userID, model.PostScheduled)
		return err
	})
	g.Go(func() (err error) {
		stats.PublishedPosts, err = s.posts.CountByStatus(gctx, userID, model.PostPublished)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalEngagement, err = s.engagement.SumValue(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.ConnectedAccounts, err = s.accounts.CountActive(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.posts.ListByUserID(gctx, userID, recentPostCount)
		return err
	})
	g.Go(func() (err error) {
		platforms, err = s.posts.PlatformCounts(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	platformStats := make([]model.PlatformStat, 0, len(platforms))
	for p, n := range platforms {
		platformStats = append(platformStats, model.PlatformStat{Platform: p, Count: n})
	}
	sort.Slice(platformStats, func(i, j int) bool {
		if platformStats[i].Count != platformStats[j].Count {
			return platformStats[i].Count > platformStats[j].Count
		}
		return platformStats[i].Platform < platformStats[j].Platform
	})
	if recent == nil {
		recent = []model.Post{}
	}

	return &model.Dashboard{
		Stats:         stats,
		RecentPosts:   recent,
		PlatformStats: platformStats,
	}, nil
}
