package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"claira-social/internal/model"
)

type CycleRepository struct {
	db *gorm.DB
}

func NewCycleRepository(db *gorm.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

func (r *CycleRepository) Create(ctx context.Context, record *model.CycleRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create cycle record failed: %w", err)
	}
	return nil
}

// Latest returns the record with the most recent start date, or nil.
func (r *CycleRepository) Latest(ctx context.Context, ownerID uint) (*model.CycleRecord, error) {
	var record model.CycleRecord
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("start_date DESC").
		Order("id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest cycle record failed: %w", err)
	}
	return &record, nil
}
