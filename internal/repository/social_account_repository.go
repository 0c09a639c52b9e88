package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"claira-social/internal/model"
)

type SocialAccountRepository struct {
	db *gorm.DB
}

func NewSocialAccountRepository(db *gorm.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

func (r *SocialAccountRepository) Create(ctx context.Context, account *model.SocialAccount) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("create social account failed: %w", err)
	}
	return nil
}

func (r *SocialAccountRepository) Save(ctx context.Context, account *model.SocialAccount) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("save social account failed: %w", err)
	}
	return nil
}

func (r *SocialAccountRepository) ListByUserID(ctx context.Context, userID uint) ([]model.SocialAccount, error) {
	var accounts []model.SocialAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("list social accounts failed: %w", err)
	}
	return accounts, nil
}

func (r *SocialAccountRepository) FindByPlatformUser(ctx context.Context, userID uint, platform model.Platform, platformUserID string) (*model.SocialAccount, error) {
	var account model.SocialAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ? AND platform_user_id = ?", userID, platform, platformUserID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query social account failed: %w", err)
	}
	return &account, nil
}

func (r *SocialAccountRepository) FindActive(ctx context.Context, userID uint, platform model.Platform) (*model.SocialAccount, error) {
	var account model.SocialAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ? AND is_active = ?", userID, platform, true).
		Order("updated_at DESC").
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query active social account failed: %w", err)
	}
	return &account, nil
}

func (r *SocialAccountRepository) DeleteByIDAndUserID(ctx context.Context, accountID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", accountID, userID).Delete(&model.SocialAccount{})
	if result.Error != nil {
		return false, fmt.Errorf("delete social account failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *SocialAccountRepository) CountActive(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SocialAccount{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count social accounts failed: %w", err)
	}
	return count, nil
}
