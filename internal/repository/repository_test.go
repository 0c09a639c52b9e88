package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"claira-social/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	pool, err := db.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestChatMessageRepository_ListRecentKeepsTailInOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewChatMessageRepository(newTestDB(t))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		require.NoError(t, repo.Append(ctx, &model.ChatMessage{
			OwnerID:   7,
			Role:      role,
			Content:   fmt.Sprintf("turn-%02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Append(ctx, &model.ChatMessage{OwnerID: 8, Role: model.RoleUser, Content: "other", CreatedAt: base}))

	recent, err := repo.ListRecent(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	for i, msg := range recent {
		assert.Equal(t, fmt.Sprintf("turn-%02d", i+5), msg.Content)
	}
}

func TestChatMessageRepository_SameTimestampFallsBackToID(t *testing.T) {
	ctx := context.Background()
	repo := NewChatMessageRepository(newTestDB(t))

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, &model.ChatMessage{OwnerID: 1, Role: model.RoleUser, Content: "first", CreatedAt: at}))
	require.NoError(t, repo.Append(ctx, &model.ChatMessage{OwnerID: 1, Role: model.RoleAssistant, Content: "second", CreatedAt: at}))

	recent, err := repo.ListRecent(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "first", recent[0].Content)
	assert.Equal(t, "second", recent[1].Content)
}

func TestCycleRepository_LatestByStartDate(t *testing.T) {
	ctx := context.Background()
	repo := NewCycleRepository(newTestDB(t))

	none, err := repo.Latest(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.Create(ctx, &model.CycleRecord{
		OwnerID:   3,
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Symptoms:  []string{"bloating"},
	}))
	require.NoError(t, repo.Create(ctx, &model.CycleRecord{
		OwnerID:   3,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Symptoms:  []string{"cramps"},
	}))

	latest, err := repo.Latest(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, []string{"bloating"}, latest.Symptoms)
}

func TestUserRepository_CreateWithSubscription(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}
	sub := &model.Subscription{Plan: model.PlanPro, Status: "ACTIVE"}
	require.NoError(t, repo.CreateWithSubscription(ctx, user, sub))
	assert.NotZero(t, user.ID)
	assert.Equal(t, user.ID, sub.UserID)

	found, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ada", found.Name)

	stored, err := repo.GetSubscription(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.PlanPro, stored.Plan)

	dup := &model.User{Name: "Ada2", Email: "ada@example.com", PasswordHash: "y"}
	err = repo.CreateWithSubscription(ctx, dup, &model.Subscription{Plan: model.PlanFree, Status: "ACTIVE"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPostRepository_DueAndTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(newTestDB(t))

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := &model.Post{UserID: 1, Content: "due", Platforms: []model.Platform{model.PlatformTwitter}, Status: model.PostScheduled, ScheduledAt: &past}
	later := &model.Post{UserID: 1, Content: "later", Platforms: []model.Platform{model.PlatformInstagram}, Status: model.PostScheduled, ScheduledAt: &future}
	draft := &model.Post{UserID: 1, Content: "draft", Platforms: []model.Platform{model.PlatformTwitter, model.PlatformLinkedIn}, Status: model.PostDraft}
	for _, p := range []*model.Post{due, later, draft} {
		require.NoError(t, repo.Create(ctx, p))
	}

	posts, err := repo.ListDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, due.ID, posts[0].ID)

	changed, err := repo.TransitionStatus(ctx, due.ID, model.PostScheduled, model.PostPublished, &now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.TransitionStatus(ctx, due.ID, model.PostScheduled, model.PostPublished, &now)
	require.NoError(t, err)
	assert.False(t, changed)

	published, err := repo.CountByStatus(ctx, 1, model.PostPublished)
	require.NoError(t, err)
	assert.EqualValues(t, 1, published)

	counts, err := repo.PlatformCounts(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[model.PlatformTwitter])
	assert.EqualValues(t, 1, counts[model.PlatformInstagram])
	assert.EqualValues(t, 1, counts[model.PlatformLinkedIn])

	deleted, err := repo.DeleteByIDAndUserID(ctx, draft.ID, 2)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAnalyticsRepository_SumValue(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalyticsRepository(newTestDB(t))

	total, err := repo.SumValue(ctx, 4)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repo.Record(ctx, &model.AnalyticsEvent{UserID: 4, Metric: "likes", Value: 12}))
	require.NoError(t, repo.Record(ctx, &model.AnalyticsEvent{UserID: 4, Metric: "shares", Value: 3}))

	total, err = repo.SumValue(ctx, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
}
