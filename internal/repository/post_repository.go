package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"claira-social/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}
	return nil
}

func (r *PostRepository) Save(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return fmt.Errorf("save post failed: %w", err)
	}
	return nil
}

func (r *PostRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.Post, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var posts []model.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts failed: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, postID uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post failed: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) GetByIDAndUserID(ctx context.Context, postID, userID uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", postID, userID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post failed: %w", err)
	}
	return &post, nil
}

func (r *PostRepository) DeleteByIDAndUserID(ctx context.Context, postID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", postID, userID).Delete(&model.Post{})
	if result.Error != nil {
		return false, fmt.Errorf("delete post failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListDue returns scheduled posts whose time has come, oldest schedule first.
func (r *PostRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = 100
	}
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", model.PostScheduled, now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list due posts failed: %w", err)
	}
	return posts, nil
}

// TransitionStatus moves a post from one status to another and reports
// whether a row changed. It is a no-op when the post is no longer in from.
func (r *PostRepository) TransitionStatus(ctx context.Context, postID uint, from, to model.PostStatus, publishedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if publishedAt != nil {
		updates["published_at"] = *publishedAt
	}
	result := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ? AND status = ?", postID, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("update post status failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *PostRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count posts failed: %w", err)
	}
	return count, nil
}

func (r *PostRepository) CountByStatus(ctx context.Context, userID uint, status model.PostStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count posts by status failed: %w", err)
	}
	return count, nil
}

// PlatformCounts counts posts per target platform. Platforms are stored as a
// JSON list, so the aggregation happens here instead of in SQL.
func (r *PostRepository) PlatformCounts(ctx context.Context, userID uint) (map[model.Platform]int64, error) {
	var posts []model.Post
	if err := r.db.WithContext(ctx).Select("id", "platforms").Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list post platforms failed: %w", err)
	}
	counts := make(map[model.Platform]int64)
	for _, p := range posts {
		for _, platform := range p.Platforms {
			counts[platform]++
		}
	}
	return counts, nil
}
