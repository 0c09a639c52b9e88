package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"claira-social/internal/model"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) Record(ctx context.Context, event *model.AnalyticsEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("record analytics event failed: %w", err)
	}
	return nil
}

func (r *AnalyticsRepository) SumValue(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.AnalyticsEvent{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum analytics failed: %w", err)
	}
	return total, nil
}
