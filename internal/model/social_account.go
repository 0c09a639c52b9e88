package model

import "time"

type SocialAccount struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	Platform         Platform  `gorm:"size:16;not null;index" json:"platform"`
	PlatformUserID   string    `gorm:"size:128;not null" json:"platform_user_id"`
	PlatformUsername string    `gorm:"size:128;not null" json:"platform_username"`
	AccessToken      string    `gorm:"type:text;not null" json:"-"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
