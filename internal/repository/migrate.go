package repository

import (
	"fmt"

	"gorm.io/gorm"

	"claira-social/internal/model"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Subscription{},
		&model.ChatMessage{},
		&model.CycleRecord{},
		&model.Post{},
		&model.SocialAccount{},
		&model.AnalyticsEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
